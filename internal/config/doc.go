// Package config loads shopdesk configuration.
//
// # Sources
//
// Values are resolved in this order, later sources winning:
//
//  1. Hardcoded defaults
//  2. The TOML file (~/.config/shopdesk/config.toml unless a path is given)
//  3. A .env file in the working directory
//  4. The process environment
//
// Only SHOPDESK_API_URL, SHOPDESK_DATA_DIR and SHOPDESK_LOG_LEVEL are read
// from the environment. The .env file is parsed with godotenv but never
// exported into the process environment.
//
// # Defaults
//
//   - api_url: http://localhost:5000
//   - request_timeout_seconds: 15
//   - retry_count: 2 (0 disables retries)
//   - retry_delay_ms: 1000
//   - page_size: 12
//   - search_debounce_ms: 500
//   - poll_seconds: 30
//   - data_dir: ~/.local/share/shopdesk
//   - log_level: info
//   - log_file: <data_dir>/shopdesk.log
//
// # TOML Format
//
//	api_url = "https://shop.example.vn"
//	request_timeout_seconds = 10
//	retry_count = 3
//	page_size = 20
//	data_dir = "~/shopdesk"
//
// Every field is optional. Values are trimmed, blank or non-positive values
// fall back to defaults and paths get tilde expansion.
//
// # Errors
//
// A missing config file or .env is not an error. Unreadable files and
// invalid TOML are; the latter mention "parse config".
package config
