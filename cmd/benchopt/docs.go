package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/benchopt/docs.go`.
//
// @title           benchopt API
// @version         1.0
// @description     HTTP API for resolving benchmark optimization options and applying them to simulated models.
//
// @contact.name   benchopt maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
