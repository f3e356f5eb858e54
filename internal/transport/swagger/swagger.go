package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func Handler() http.Handler {
	// Serve the OpenAPI spec published at root by the router.
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	)
}
