package controllers

import (
	"github.com/shashiranjanraj/sweetshop/app/resources"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/resource"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type registerInput struct {
	Username string `json:"username" validate:"required,alpha_dash,min=3,max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Register handles POST /api/auth/register.
func (c *AuthController) Register(cx *ctx.Context) {
	var in registerInput
	if !cx.BindJSON(&in) {
		return
	}

	session, err := c.service.Register(cx.Context(), in.Username, in.Email, in.Password)
	if err != nil {
		respondError(cx, err)
		return
	}
	cx.Created(resource.Map{"access_token": session.Token})
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login.
func (c *AuthController) Login(cx *ctx.Context) {
	var in loginInput
	if !cx.BindJSON(&in) {
		return
	}

	session, err := c.service.Login(cx.Context(), in.Username, in.Password)
	if err != nil {
		respondError(cx, err)
		return
	}
	cx.Success(resource.Map{"access_token": session.Token, "role": session.User.Role})
}

// Me handles GET /api/auth/me.
func (c *AuthController) Me(cx *ctx.Context) {
	user, err := c.service.Me(cx.Context(), cx.UserID())
	if err != nil {
		respondError(cx, err)
		return
	}
	cx.Success(resource.One(resources.User, user))
}
