// Package schema exposes the sweet catalogue as a read-only GraphQL API:
//
//	{ sweets(category: "Indian", maxPrice: 20) { id name price quantity } }
//	{ sweet(id: "...") { name inStock } }
package schema

import (
	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/services"
	gql "github.com/shashiranjanraj/sweetshop/pkg/graphql"
)

var sweetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Sweet",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"category": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"price":    &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"quantity": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"imageUrl": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(models.Sweet).ImageURL, nil
			},
		},
		"inStock": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Boolean),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(models.Sweet).InStock(1), nil
			},
		},
	},
})

// Catalog builds the schema over catalog.
func Catalog(catalog *services.CatalogService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"sweets": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(sweetType))),
				Args: graphql.FieldConfigArgument{
					"name":     &graphql.ArgumentConfig{Type: graphql.String},
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"minPrice": &graphql.ArgumentConfig{Type: graphql.Float},
					"maxPrice": &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if len(p.Args) == 0 {
						return catalog.List(p.Context)
					}
					f := models.SweetFilter{}
					f.Name, _ = p.Args["name"].(string)
					f.Category, _ = p.Args["category"].(string)
					if v, ok := p.Args["minPrice"].(float64); ok {
						f.MinPrice = &v
					}
					if v, ok := p.Args["maxPrice"].(float64); ok {
						f.MaxPrice = &v
					}
					return catalog.Search(p.Context, f)
				},
			},
			"sweet": &graphql.Field{
				Type: sweetType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					return catalog.Get(p.Context, id)
				},
			},
		},
	})
	return gql.NewSchema(query)
}
