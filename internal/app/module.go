package app

import "github.com/gin-gonic/gin"

// Module is a self-registering feature area. Each module mounts its
// endpoints on the versioned API group.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup)
}
