package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/nappsnasarawa/levyreceipt"
	"github.com/nappsnasarawa/levyreceipt/pageops"
)

// Searcher finds payments on the member portal. *portal.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]levyreceipt.PaymentRecord, error)
}

// Deps are the services the receipt tools run on.
type Deps struct {
	Renderer *levyreceipt.Renderer
	Searcher Searcher // optional; lookup_payments is omitted without it
}

// RegisterTools adds the receipt tools to the server.
func RegisterTools(s *Server, d Deps) {
	s.AddTool(renderReceiptTool(d.Renderer))
	s.AddTool(receiptLayoutTool(d.Renderer))
	s.AddTool(formatAmountTool())
	s.AddTool(mergeReceiptsTool())
	s.AddTool(stampReceiptTool())
	if d.Searcher != nil {
		s.AddTool(lookupPaymentsTool(d.Searcher))
	}
}

var paymentSchema = map[string]interface{}{
	"type":        "object",
	"description": "Payment record as returned by the portal: receiptNumber, reference, memberName, schoolName, wards, amount (kobo), paidAt, and optionally email, phone, chapter, paymentMethod, status",
}

func paymentArg(args map[string]interface{}) (levyreceipt.PaymentRecord, error) {
	var p levyreceipt.PaymentRecord
	raw, ok := args["payment"]
	if !ok {
		return p, fmt.Errorf("missing 'payment' argument")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return p, fmt.Errorf("encoding payment: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decoding payment: %w", err)
	}
	return p, nil
}

func textResult(format string, a ...interface{}) ToolResult {
	return ToolResult{
		Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf(format, a...)}},
	}
}

func renderReceiptTool(r *levyreceipt.Renderer) Tool {
	return Tool{
		Name:        "render_receipt",
		Description: "Render the levy receipt PDF for a payment record. Returns the PDF as base64 unless outputPath is given.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"payment": paymentSchema,
				"outputPath": map[string]interface{}{
					"type":        "string",
					"description": "Optional file path to save the PDF. If omitted, returns base64.",
				},
				"watermark": map[string]interface{}{
					"type":        "string",
					"description": "Optional reprint watermark, e.g. DUPLICATE",
				},
			},
			"required": []string{"payment"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			p, err := paymentArg(args)
			if err != nil {
				return ToolResult{}, err
			}
			doc, err := r.Build(p)
			if err != nil {
				return ToolResult{}, err
			}
			data := doc.Data
			if text, _ := args["watermark"].(string); text != "" {
				var buf bytes.Buffer
				if err := pageops.Stamp(&buf, bytes.NewReader(data), pageops.TextWatermark{Text: text}); err != nil {
					return ToolResult{}, err
				}
				data = buf.Bytes()
			}

			if outputPath, _ := args["outputPath"].(string); outputPath != "" {
				if err := os.WriteFile(outputPath, data, 0o644); err != nil {
					return ToolResult{}, fmt.Errorf("writing file: %w", err)
				}
				return textResult("Receipt %s saved to %s (%d bytes)", doc.Name, outputPath, len(data)), nil
			}
			return textResult("Receipt %s (%d bytes). Base64 data:\n%s",
				doc.Name, len(data), base64.StdEncoding.EncodeToString(data)), nil
		},
	}
}

func receiptLayoutTool(r *levyreceipt.Renderer) Tool {
	return Tool{
		Name:        "receipt_layout",
		Description: "Lay out the receipt for a payment record without drawing it. Returns the positioned elements of every page as JSON.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"payment": paymentSchema,
			},
			"required": []string{"payment"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			p, err := paymentArg(args)
			if err != nil {
				return ToolResult{}, err
			}
			doc, err := r.Layout(p)
			if err != nil {
				return ToolResult{}, err
			}
			jsonBytes, err := json.MarshalIndent(doc.Pages, "", "  ")
			if err != nil {
				return ToolResult{}, err
			}
			return textResult("%s", jsonBytes), nil
		},
	}
}

func formatAmountTool() Tool {
	return Tool{
		Name:        "format_amount",
		Description: "Format an amount in kobo the way receipts display it, e.g. 2500000 -> ₦25,000.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"kobo": map[string]interface{}{
					"type":        "integer",
					"description": "Amount in kobo",
				},
			},
			"required": []string{"kobo"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			kobo, ok := args["kobo"].(float64)
			if !ok || kobo != math.Trunc(kobo) || math.Abs(kobo) > 1<<53 {
				return ToolResult{}, fmt.Errorf("'kobo' must be an integer")
			}
			return textResult("%s", levyreceipt.FormatNaira(int64(kobo))), nil
		},
	}
}

func lookupPaymentsTool(s Searcher) Tool {
	return Tool{
		Name:        "lookup_payments",
		Description: "Search the member portal for levy payments by receipt number, reference, email or phone.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Receipt number, payment reference, email or phone",
				},
			},
			"required": []string{"query"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			query, _ := args["query"].(string)
			if query == "" {
				return ToolResult{}, fmt.Errorf("missing 'query' argument")
			}
			records, err := s.Search(ctx, query)
			if err != nil {
				return ToolResult{}, err
			}
			jsonBytes, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return ToolResult{}, err
			}
			return textResult("%s", jsonBytes), nil
		},
	}
}

func mergeReceiptsTool() Tool {
	return Tool{
		Name:        "merge_receipts",
		Description: "Merge several receipt PDFs into a single PDF, in the given order.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"inputPaths": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Paths to receipt PDFs to merge, in order",
				},
				"outputPath": map[string]interface{}{
					"type":        "string",
					"description": "Path for the merged output PDF",
				},
			},
			"required": []string{"inputPaths", "outputPath"},
		},
		Handler: handleMergeReceipts,
	}
}

func handleMergeReceipts(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	pathsRaw, ok := args["inputPaths"].([]interface{})
	if !ok {
		return ToolResult{}, fmt.Errorf("missing 'inputPaths' argument")
	}
	outputPath, ok := args["outputPath"].(string)
	if !ok || outputPath == "" {
		return ToolResult{}, fmt.Errorf("missing 'outputPath' argument")
	}

	paths := make([]string, len(pathsRaw))
	for i, p := range pathsRaw {
		paths[i], _ = p.(string)
	}

	if err := pageops.MergeFiles(outputPath, paths...); err != nil {
		return ToolResult{}, fmt.Errorf("merging: %w", err)
	}
	return textResult("Merged %d receipts into %s", len(paths), outputPath), nil
}

func stampReceiptTool() Tool {
	return Tool{
		Name:        "stamp_receipt",
		Description: "Stamp a text watermark such as DUPLICATE across every page of an existing receipt PDF.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"inputPath": map[string]interface{}{
					"type":        "string",
					"description": "Path to the input PDF",
				},
				"outputPath": map[string]interface{}{
					"type":        "string",
					"description": "Path for the output PDF",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Watermark text",
				},
				"fontSize": map[string]interface{}{
					"type":        "number",
					"description": "Font size in points (default: 60)",
				},
				"opacity": map[string]interface{}{
					"type":        "number",
					"description": "Opacity from 0.0 to 1.0 (default: 0.3)",
				},
				"angle": map[string]interface{}{
					"type":        "number",
					"description": "Rotation angle in degrees (default: 45)",
				},
			},
			"required": []string{"inputPath", "outputPath", "text"},
		},
		Handler: handleStampReceipt,
	}
}

func handleStampReceipt(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	inputPath, _ := args["inputPath"].(string)
	outputPath, _ := args["outputPath"].(string)
	text, _ := args["text"].(string)

	if inputPath == "" || outputPath == "" || text == "" {
		return ToolResult{}, fmt.Errorf("inputPath, outputPath, and text are required")
	}

	wm := pageops.TextWatermark{Text: text}
	if fs, ok := args["fontSize"].(float64); ok {
		wm.FontSize = fs
	}
	if op, ok := args["opacity"].(float64); ok {
		wm.Opacity = op
	}
	if angle, ok := args["angle"].(float64); ok {
		wm.Angle = angle
	}

	if err := pageops.StampFile(inputPath, outputPath, wm); err != nil {
		return ToolResult{}, err
	}
	return textResult("Watermark '%s' added to %s -> %s", text, inputPath, outputPath), nil
}
