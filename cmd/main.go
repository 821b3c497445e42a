package main

import (
	"mercury-api/app"
)

// @title           Mercury API
// @version         1.0
// @description     Authentication and session API for the Mercury publishing platform.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
