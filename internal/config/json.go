package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/skillkeeper/internal/flagx"
	"github.com/dmitrijs2005/skillkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the autosave interval either as a
// string like "10m" or as integer nanoseconds. After parsing, values are
// copied into the runtime Config.
type JsonConfig struct {
	DatabaseDSN               string         `json:"database_dsn"`
	ModifierItemCheckPeriod   int            `json:"modifier_item_check_period"`
	ModifierItemEnableOffHand bool           `json:"modifier_item_enable_off_hand"`
	SaveBlankProfiles         bool           `json:"save_blank_profiles"`
	AutosaveInterval          timex.Duration `json:"autosave_interval"`
	LogDir                    string         `json:"log_dir"`
	S3RootUser                string         `json:"s3_root_user"`
	S3RootPassword            string         `json:"s3_root_password"`
	S3Bucket                  string         `json:"s3_bucket"`
	S3Region                  string         `json:"s3_region"`
	S3BaseEndpoint            string         `json:"s3_base_endpoint"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// The file is expected to be complete: all fields are copied, so a partial
// file resets omitted options to their zero values. Read or unmarshal
// errors panic; they are configuration mistakes the operator must fix.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.DatabaseDSN = jc.DatabaseDSN
	cfg.ModifierItemCheckPeriod = jc.ModifierItemCheckPeriod
	cfg.ModifierItemEnableOffHand = jc.ModifierItemEnableOffHand
	cfg.SaveBlankProfiles = jc.SaveBlankProfiles
	cfg.AutosaveInterval = time.Duration(jc.AutosaveInterval.Duration)
	cfg.LogDir = jc.LogDir
	cfg.S3RootUser = jc.S3RootUser
	cfg.S3RootPassword = jc.S3RootPassword
	cfg.S3Bucket = jc.S3Bucket
	cfg.S3Region = jc.S3Region
	cfg.S3BaseEndpoint = jc.S3BaseEndpoint
}
