package notifications

import "html/template"

var funcs = template.FuncMap{
	"money": formatINR,
}

var purchaseTmpl = template.Must(template.New("purchase_confirmation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Purchase Confirmation</title></head>
<body style="font-family:Arial,sans-serif;background:#f5f3ff;margin:0;padding:20px">
  <div style="max-width:600px;margin:0 auto;background:#fff;border-radius:12px;padding:24px">
    <h1 style="color:#6c5ce7">Purchase Confirmation</h1>
    <p>Hi {{.Username}}!</p>
    <p>Thank you for your sweet purchase! Your order has been confirmed.</p>
    <table style="width:100%;border-collapse:collapse">
      <tr><td>Sweet</td><td><b>{{.SweetName}}</b></td></tr>
      <tr><td>Quantity</td><td>{{.Quantity}} piece(s)</td></tr>
      <tr><td>Unit price</td><td>{{money .Price}}</td></tr>
      <tr><td>Order date</td><td>{{.Date}}</td></tr>
      <tr><td>Order ID</td><td>{{.PurchaseID}}</td></tr>
    </table>
    <h2 style="color:#6c5ce7">Total: {{money .Total}}</h2>
    <p style="color:#74b9ff">Sweet Shop Team</p>
  </div>
</body>
</html>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<h2>Hi {{.Username}},</h2>
<p>Welcome to <b>Sweet Shop</b>! We're excited to have you.</p>
<p>You can now explore our wide range of sweets and place your first order.</p>
<br/>
<p style="color:purple;">Happy Shopping!<br/>Sweet Shop Team</p>`))
