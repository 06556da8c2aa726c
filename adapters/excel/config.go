package excel

// LabelConfig selects the columns of a label sheet. Empty fields fall back to
// auto-detection (columns) or the first sheet (Sheet).
type LabelConfig struct {
	FilePath    string `json:"file_path"`
	IDColumn    string `json:"id_column"`
	LabelColumn string `json:"label_column"`
	Sheet       string `json:"sheet"`
}

// Header names tried, in order, when no column hint is given
var (
	DefaultIDColumns    = []string{"Paziente", "ID", "Id", "Subject", "subject", "patient", "Patient"}
	DefaultLabelColumns = []string{"Label", "label", "y", "Y", "Class", "class", "Classe"}
)
