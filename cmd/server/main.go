package main

import "ispcrm/internal/app"

// @title           ISP CRM API
// @version         1.0
// @description     Sales CRM for an internet service provider: leads, deals with price approval, customers and services.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
