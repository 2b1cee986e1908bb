package config

import (
	"os"
	"path/filepath"
)

// Config holds the dashboard runtime configuration, loaded from the
// environment with sensible single-user defaults.
type Config struct {
	Store struct {
		// Path of the embedded SQLite file. Deleting it forces a full
		// re-import on next launch.
		Path string
	}
	Import struct {
		// DataDir is the directory holding the six cleaned CSV sources.
		// Individual file paths may be overridden per file.
		DataDir         string
		PatientFile     string
		ScoresFile      string
		GroupsFile      string
		LabResultsFile  string
		LabResultsEN    string
		MeasurementFile string
	}
	// PatientID scopes score and lab-result rows during import. When empty
	// the importer falls back to the first patient in the store.
	PatientID string
	Log       struct {
		Level  string
		Format string
	}
}

func Load() *Config {
	cfg := &Config{}
	cfg.Store.Path = getEnv("JDM_DB_PATH", "jdm_dashboard.db")

	dataDir := getEnv("JDM_DATA_DIR", "data")
	cfg.Import.DataDir = dataDir
	cfg.Import.PatientFile = getEnv("JDM_PATIENT_CSV", filepath.Join(dataDir, "Patient.csv"))
	cfg.Import.ScoresFile = getEnv("JDM_CMAS_CSV", filepath.Join(dataDir, "CMAS.csv"))
	cfg.Import.GroupsFile = getEnv("JDM_LAB_GROUP_CSV", filepath.Join(dataDir, "LabResultGroup.csv"))
	cfg.Import.LabResultsFile = getEnv("JDM_LAB_RESULT_CSV", filepath.Join(dataDir, "LabResult.csv"))
	cfg.Import.LabResultsEN = getEnv("JDM_LAB_RESULT_EN_CSV", filepath.Join(dataDir, "LabResultsEN.csv"))
	cfg.Import.MeasurementFile = getEnv("JDM_MEASUREMENT_CSV", filepath.Join(dataDir, "Measurement.csv"))

	cfg.PatientID = getEnv("JDM_PATIENT_ID", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "console")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
