// Package output renders run reports in raw, JSON or XML form.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/dirlisting/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader      = xml.Header
	xmlRootElement = "report"

	rawFileFormat       = "%s: %s (%s)\n"
	rawFileTokensFormat = "%s: %s (%s, %d tokens, %s)\n"

	invalidFormatMessage = "invalid format value '%s'"
)

// IsSupportedFormat reports whether the provided format is recognized.
func IsSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

// RenderReport writes report to writer in format. The raw form lists files only when
// detailed is set; JSON and XML always carry every file.
func RenderReport(writer io.Writer, report types.RunReport, format string, detailed bool) error {
	var rendered string
	var renderErr error
	switch strings.ToLower(format) {
	case types.FormatRaw:
		rendered = renderRaw(report, detailed)
	case types.FormatJSON:
		rendered, renderErr = renderJSON(report)
	case types.FormatXML:
		rendered, renderErr = renderXML(report)
	default:
		return fmt.Errorf(invalidFormatMessage, format)
	}
	if renderErr != nil {
		return renderErr
	}
	_, writeErr := io.WriteString(writer, rendered)
	return writeErr
}

func renderRaw(report types.RunReport, detailed bool) string {
	if !detailed {
		return ""
	}
	var builder strings.Builder
	for _, outputFile := range report.Files {
		if outputFile.Model == "" {
			fmt.Fprintf(&builder, rawFileFormat, outputFile.Phase, outputFile.Path, outputFile.Size)
			continue
		}
		fmt.Fprintf(&builder, rawFileTokensFormat, outputFile.Phase, outputFile.Path, outputFile.Size, outputFile.Tokens, outputFile.Model)
	}
	return builder.String()
}

func renderJSON(report types.RunReport) (string, error) {
	if report.Files == nil {
		report.Files = []types.OutputFile{}
	}
	encoded, jsonEncodeError := json.MarshalIndent(report, indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return "", jsonEncodeError
	}
	return string(encoded) + "\n", nil
}

func renderXML(report types.RunReport) (string, error) {
	wrapper := struct {
		XMLName xml.Name `xml:""`
		types.RunReport
	}{
		XMLName:   xml.Name{Local: xmlRootElement},
		RunReport: report,
	}
	encoded, xmlMarshalError := xml.MarshalIndent(wrapper, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded) + "\n", nil
}
