// Package config loads the cohortlens configuration file (cohortlens.yaml).
//
// Top-level types:
//   - Config{Dataset, Filter, Export, Log, Rules}: full config tree parsed from YAML
//   - DatasetConfig: source (file|mysql), path, dsn_env, query_timeout;
//     DSN() resolves the MySQL DSN from the environment
//   - ExportConfig: Prometheus textfile path and metric namespace
//   - LogConfig: level (debug|info|warn|error) and format (text|json)
//   - rules.Rule: threshold checks run by `cohortlens check`
//
// Load(path) reads the YAML file, applies defaults (file source at
// data/cohorts.json, filter all, 10s query timeout, info/text logging), then
// validates required fields and enums. Default() returns the same defaults
// for runs without a config file.
package config
