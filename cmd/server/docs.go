// Package main FlowSpace Server API
//
//	@title						FlowSpace Server API
//	@version					1.0
//	@description				Collaborative Kanban boards with shared notes, invitations and realtime rooms.
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Boards
//	@tag.description			Boards and membership
//
//	@tag.name					Cards
//	@tag.description			Kanban cards
//
//	@tag.name					Notes
//	@tag.description			Shared board notes
//
//	@tag.name					Invites
//	@tag.description			Board invitations
//
//	@tag.name					Users
//	@tag.description			Current user
package main
