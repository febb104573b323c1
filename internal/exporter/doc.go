// Package exporter renders audit results into downloadable report files.
//
// This package contains two main components:
//
// ExcelBuilder: Builds the multi-tab Excel workbook with an Analysis Summary
// landing page (hyperlinks, KPI block, negative-profit block, embedded
// rollup previews) followed by one detail sheet per view.
//
// CSVWriter: Core CSV writing functionality with support for headers and
// UTF-8 BOM for Excel compatibility, used to export the individual summary
// tables as flat files.
//
// Example usage:
//
//	builder := exporter.NewExcelBuilder(logger)
//	data, err := builder.Build(result)
//
//	writer := exporter.NewCSVWriter(logger)
//	err = writer.ExportSummaries(result, "reports/run-42")
package exporter
