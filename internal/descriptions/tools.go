// Package descriptions holds the long-form descriptions shown to MCP clients
// for every tool the server exposes.
package descriptions

import "sort"

const (
	// Scanning Tools
	PDFCountDocumentsDescription = `Split a multi-document PDF bundle into its documents and extract labeled values from each one.

**When to use:** A single PDF holds many invoices, statements or forms back to back and you need to know how many there are, where each one starts and what its key values are.

**How it works:** Every page is read as positioned text. Fields marked as first-page identifiers start a new document whenever they yield a value. Every field is then resolved per document by one of three strategies:
• rectangle: text whose box falls at least 60% inside x, y, width, height (PDF points, bottom-left origin)
• inline: the text right of a label chunk equal to the field name, on the same line
• match list: the first chunk equal to one of the comma separated match_values

**Examples:**
• "Count the invoices in march-bundle.pdf using the INVOICE_NO rectangle"
• "List the customer and total of every statement in statements.pdf"

**Output:** documents with start page, page count, blank pages and fonts, one row per document, and counts of repeated identifier values.

**Best practices:** Use pdf_page_chunks or pdf_seed_field to find the coordinates of a field before scanning.`

	PDFPageChunksDescription = `List the positioned text chunks of one PDF page in reading order.

**When to use:** Designing field descriptors, checking why a field does not resolve, or inspecting the fonts of a page.

**Why it's useful:** Shows each chunk's text with x, y, width, height, top and bottom in the same coordinates the scanner uses.

**Examples:**
• "Show the chunks on page 1 of bundle.pdf containing 'Invoice'"
• "What fonts does page 3 of report.pdf use?"

**Best practices:** Use the filter parameter on busy pages.`

	PDFSeedFieldDescription = `Create a rectangle field descriptor from the first chunk on a page that contains some text.

**When to use:** You know what a value looks like on one document (for example "INV-001") and need a descriptor that finds the same position on every document.

**Examples:**
• "Seed a field named INVOICE_NO from 'INV-001' on page 1 of bundle.pdf"

**Common workflows:**
1. pdf_page_chunks → pick a value → pdf_seed_field with identifier=true → pdf_count_documents

**Best practices:** Seed from the value, not from its label, and pass identifier=true for the field that changes per document.`

	PDFValidateFileDescription = `Verify that a PDF can be scanned before counting its documents.

**When to use:** Before pdf_count_documents on files of unknown origin, or to find out how many pages a file has.

**Why it's useful:** Checks the file exists, is a PDF within the size limit, opens with the text decoder and passes structural validation.

**Examples:**
• "Validate upload.pdf before scanning it"

**Best practices:** Essential in automated workflows handling unknown PDFs.`

	PDFScanDirectoryDescription = `Count the documents of every PDF in a directory with one set of field descriptors.

**When to use:** Processing a folder of bundles that share a layout.

**Why it's useful:** Files are scanned concurrently and a failure on one file is reported next to the others instead of stopping the run.

**Examples:**
• "Count the invoices in every PDF under ./incoming"
• "Scan the files in ./archive matching '2024' and report duplicate invoice numbers"

**Best practices:** Validate the descriptors on a single file with pdf_count_documents first.`

	PDFServerInfoDescription = `Get server configuration, available tools and the PDFs in the configured directory.

**When to use:** Starting work with the server or troubleshooting issues.

**Best practices:** Call this first to learn the configured directory and size limit.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"pdf_count_documents": PDFCountDocumentsDescription,
	"pdf_page_chunks":     PDFPageChunksDescription,
	"pdf_seed_field":      PDFSeedFieldDescription,
	"pdf_validate_file":   PDFValidateFileDescription,
	"pdf_scan_directory":  PDFScanDirectoryDescription,
	"pdf_server_info":     PDFServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all tools, sorted
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
