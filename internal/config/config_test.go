package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg := Load()

	if cfg.Store.Path != "jdm_dashboard.db" {
		t.Errorf("Expected JDM_DB_PATH default 'jdm_dashboard.db', got '%s'", cfg.Store.Path)
	}

	if cfg.Import.DataDir != "data" {
		t.Errorf("Expected JDM_DATA_DIR default 'data', got '%s'", cfg.Import.DataDir)
	}

	if cfg.Import.ScoresFile != "data/CMAS.csv" {
		t.Errorf("Expected scores file default 'data/CMAS.csv', got '%s'", cfg.Import.ScoresFile)
	}

	if cfg.Import.LabResultsEN != "data/LabResultsEN.csv" {
		t.Errorf("Expected overlay file default 'data/LabResultsEN.csv', got '%s'", cfg.Import.LabResultsEN)
	}

	if cfg.PatientID != "" {
		t.Errorf("Expected JDM_PATIENT_ID default '', got '%s'", cfg.PatientID)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Expected LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}

	if cfg.Log.Format != "console" {
		t.Errorf("Expected LOG_FORMAT default 'console', got '%s'", cfg.Log.Format)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("JDM_DB_PATH", "/tmp/test.db")
	os.Setenv("JDM_DATA_DIR", "/srv/csv")
	os.Setenv("JDM_CMAS_CSV", "/srv/other/scores.csv")
	os.Setenv("JDM_PATIENT_ID", "patient-1")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Clearenv()

	cfg := Load()

	if cfg.Store.Path != "/tmp/test.db" {
		t.Errorf("Expected JDM_DB_PATH '/tmp/test.db', got '%s'", cfg.Store.Path)
	}

	// Per-file override wins over the data dir.
	if cfg.Import.ScoresFile != "/srv/other/scores.csv" {
		t.Errorf("Expected scores file '/srv/other/scores.csv', got '%s'", cfg.Import.ScoresFile)
	}

	// Files without an override follow the data dir.
	if cfg.Import.PatientFile != "/srv/csv/Patient.csv" {
		t.Errorf("Expected patient file '/srv/csv/Patient.csv', got '%s'", cfg.Import.PatientFile)
	}

	if cfg.PatientID != "patient-1" {
		t.Errorf("Expected JDM_PATIENT_ID 'patient-1', got '%s'", cfg.PatientID)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected LOG_LEVEL 'debug', got '%s'", cfg.Log.Level)
	}
}
