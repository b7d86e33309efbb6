// Package config loads quill's settings.
//
// Configuration is layered, higher layers overriding lower:
//
//	┌──────────────────────────────┐
//	│  6. Overrides (flags)        │  ← Highest priority
//	├──────────────────────────────┤
//	│  5. QUILL_* environment      │
//	├──────────────────────────────┤
//	│  4. --config file            │
//	├──────────────────────────────┤
//	│  3. Project .quill.toml      │
//	├──────────────────────────────┤
//	│  2. ~/.config/quill/config   │
//	├──────────────────────────────┤
//	│  1. Built-in defaults        │  ← Lowest priority
//	└──────────────────────────────┘
//
// Files may be TOML or YAML. The merged map is decoded into Config and
// validated; unknown keys are errors.
//
// # Environment Variables
//
// QUILL_SECTION_SETTING_NAME maps to section.settingName, so
// QUILL_HIGHLIGHT_CACHE_SIZE=64 sets highlight.cacheSize. A few short
// names are mapped directly:
//
//	QUILL_LOG_LEVEL    → logging.level
//	QUILL_LOG_FORMAT   → logging.format
//	QUILL_LOG_FILE     → logging.file
//	QUILL_THEME        → highlight.theme
//
// # Example
//
//	[highlight]
//	cacheSize = 512
//	theme = "monokai"
//	debounce = "75ms"
//
//	[highlight.palette]
//	keyword = "#ff79c6"
//
//	[highlight.extensions]
//	".es6" = "javascript"
package config
