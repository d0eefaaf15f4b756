package config

// Application constants
const (
	AppName = "econviz"

	// Snapshot files
	MaxSnapshotFileSize = 100 << 20 // 100MB
	DefaultSnapshotName = "combined_data.csv"

	// Exports
	DefaultExportBaseName = "chart"
	ExportFilePerms       = 0644
)

// SnapshotExtensions lists the file types the snapshot loader understands
var SnapshotExtensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

// ExportFormats lists the formats a chart can be exported to
var ExportFormats = []string{"csv", "xlsx", "json"}
