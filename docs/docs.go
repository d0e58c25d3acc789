package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Geolocator",
    "description": "Geocoding autocomplete proxy for the location search widget",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/api/geoapihide": {
      "get": {
        "tags": ["geocode"],
        "summary": "Location autocomplete",
        "produces": ["application/json"],
        "parameters": [
          {"name": "query", "in": "query", "type": "string", "required": true, "description": "free text place name"}
        ],
        "responses": {
          "200": {"description": "provider feature collection, relayed verbatim"},
          "400": {"description": "query too long", "schema": {"$ref": "#/definitions/ErrorBody"}},
          "500": {"description": "missing API key or provider failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
        }
      }
    },
    "/api/map/config": {
      "get": {
        "tags": ["map"],
        "summary": "Map configuration",
        "produces": ["application/json"],
        "responses": {"200": {"description": "tile layer and default view"}}
      }
    },
    "/healthz": {
      "get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}
    }
  },
  "definitions": {
    "ErrorBody": {
      "type": "object",
      "properties": {"error": {"type": "string"}}
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
