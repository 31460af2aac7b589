// Package docs TaskHive API documentation
package docs

// Swagger documentation info
// @title TaskHive API
// @version 1.0
// @description Central API documentation for the TaskHive backend services

// @host localhost:8001
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// API Service Endpoints
// @tag.name todos
// @tag.description Todo hierarchy management
// @tag.name invitations
// @tag.description Invitation lifecycle management
// @tag.name organizations
// @tag.description Organization management
// @tag.name projects
// @tag.description Project management
// @tag.name organization-members
// @tag.description Organization membership management
// @tag.name project-members
// @tag.description Project membership management
// @tag.name users
// @tag.description User lookups

// Notification Service Endpoints
// @tag.name notifications
// @tag.description Email dispatch
// @tag.name websocket
// @tag.description Real-time notifications
