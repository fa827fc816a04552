package converter

// Defaults for the in-memory selections. The percentages are strings because that is
// how the shells hold them until a request is built.
const (
	DefaultFormat            = FormatWebP
	DefaultResizePercentage  = "100"
	DefaultQualityPercentage = "100"
	DefaultNamingMethod      = NamingHashOnly
	DefaultReportFormat      = ReportFormatText
	DefaultTuiEnabled        = true
	DefaultRetainLog         = false
	DefaultVerbose           = false
)

const (
	// OutputDirName is the folder created under ~/Desktop when no output directory is configured.
	OutputDirName = "Converterz"
	// DiagnosticLogName is the scratch log kept inside the output directory during a run.
	DiagnosticLogName = "converter_log.txt"
	// TimestampLayout formats the source creation date used by NamingHashTimestamp.
	TimestampLayout = "20060102"
	// NoResizePercentage leaves the image dimensions untouched.
	NoResizePercentage = 100
)

// ReportSchemaVersion versions the structure printed by the json/yaml/toml report formats.
const ReportSchemaVersion = "1.0"
