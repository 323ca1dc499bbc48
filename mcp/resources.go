package mcp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/nappsnasarawa/levyreceipt"
	"github.com/nappsnasarawa/levyreceipt/pageops"
)

// RegisterResources adds the receipt resources to the server.
func RegisterResources(s *Server) {
	s.AddResource(Resource{
		URI:         "receipt://geometry",
		Name:        "Receipt Geometry",
		Description: "The default A4 receipt layout measurements (millimetres and points).",
		MIMEType:    "application/json",
		Handler:     handleGeometryResource,
	})

	s.AddResource(Resource{
		URI:         "receipt://pages",
		Name:        "Receipt Page Count",
		Description: "Count the pages of a receipt PDF. Pass the file path as a query parameter: receipt://pages?path=/path/to/receipt.pdf",
		MIMEType:    "application/json",
		Handler:     handlePagesResource,
	})
}

func extractPathFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Query().Get("path")
}

func handleGeometryResource(uri string) ([]ResourceContent, error) {
	jsonBytes, err := json.MarshalIndent(levyreceipt.DefaultGeometry(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(jsonBytes),
	}}, nil
}

func handlePagesResource(uri string) ([]ResourceContent, error) {
	path := extractPathFromURI(uri)
	if path == "" {
		return nil, fmt.Errorf("missing 'path' parameter in URI")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n, err := pageops.PageCount(f)
	if err != nil {
		return nil, err
	}

	jsonBytes, _ := json.Marshal(map[string]interface{}{
		"path":     path,
		"numPages": n,
	})
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(jsonBytes),
	}}, nil
}
