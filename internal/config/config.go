package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	League      LeagueConfig      `mapstructure:"league"`
	Roster      RosterConfig      `mapstructure:"roster"`
	Valuation   ValuationConfig   `mapstructure:"valuation"`
	Projections ProjectionsConfig `mapstructure:"projections"`
	EventLog    EventLogConfig    `mapstructure:"event_log"`
	Advisor     AdvisorConfig     `mapstructure:"advisor"`
	Cron        CronConfig        `mapstructure:"cron"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type LeagueConfig struct {
	// MyTeamName may be comma-separated aliases; the first entry is the display name.
	MyTeamName string `mapstructure:"my_team_name"`
	Size       int    `mapstructure:"size"`
	Budget     int64  `mapstructure:"budget"`
}

type RosterConfig struct {
	// Slots is a comma-separated slot type list, e.g. "QB,RB,RB,WR,WR,TE,FLEX,FLEX,K,DEF".
	// Duplicate types are labeled with a trailing index at construction (RB1, RB2).
	Slots string `mapstructure:"slots"`
	// Eligibility maps a slot base type to the positions it accepts.
	Eligibility map[string][]string `mapstructure:"eligibility"`
}

type ValuationConfig struct {
	// Baselines holds the replacement-level rank per position (Nth best = replacement).
	Baselines map[string]int `mapstructure:"baselines"`
	Strategy  string         `mapstructure:"strategy"`
	// FlexOnlyPolicy selects how a nomination is handled when only flex or bench
	// slots remain open for the position: "discount" or "enforce".
	FlexOnlyPolicy string `mapstructure:"flex_only_policy"`
	// FuzzyThreshold is the 0-100 name resolver acceptance score.
	FuzzyThreshold int `mapstructure:"fuzzy_threshold"`
}

type ProjectionsConfig struct {
	CSVPath string `mapstructure:"csv_path"`
	// CSVPaths enables multi-source weighted merging; empty means CSVPath only.
	CSVPaths []string  `mapstructure:"csv_paths"`
	Weights  []float64 `mapstructure:"weights"`
	// ADPCsv points at a market-consensus auction value sheet; empty disables
	// the ADP comparison in advice.
	ADPCsv string `mapstructure:"adp_csv"`
	// KeepersCsv points at pre-draft keeper assignments; empty means none.
	KeepersCsv string `mapstructure:"keepers_csv"`
}

type EventLogConfig struct {
	Path string `mapstructure:"path"`
}

type AdvisorConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	Cooldown       time.Duration `mapstructure:"cooldown"`
	RateLimitTrips int           `mapstructure:"rate_limit_trips"`
}

type CronConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ExportSpec string `mapstructure:"export_spec"`
	ExportPath string `mapstructure:"export_path"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(path)

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8000")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", true)
	v.SetDefault("log.disable_stacktrace", true)

	v.SetDefault("league.my_team_name", "My Team")
	v.SetDefault("league.size", 10)
	v.SetDefault("league.budget", 200)

	v.SetDefault("roster.slots", "QB,RB,RB,WR,WR,TE,FLEX,FLEX,K,DEF")
	v.SetDefault("roster.eligibility", map[string][]string{
		"QB":        {"QB"},
		"RB":        {"RB"},
		"WR":        {"WR"},
		"TE":        {"TE"},
		"K":         {"K"},
		"DEF":       {"DEF"},
		"FLEX":      {"RB", "WR", "TE"},
		"SUPERFLEX": {"QB", "RB", "WR", "TE"},
		"BENCH":     {"QB", "RB", "WR", "TE", "K", "DEF"},
	})

	v.SetDefault("valuation.baselines", map[string]int{
		"QB": 11, "RB": 30, "WR": 30, "TE": 11, "K": 1, "DEF": 1,
	})
	v.SetDefault("valuation.strategy", "balanced")
	v.SetDefault("valuation.flex_only_policy", "discount")
	v.SetDefault("valuation.fuzzy_threshold", 82)

	v.SetDefault("projections.csv_path", "data/projections.csv")
	v.SetDefault("projections.adp_csv", "")
	v.SetDefault("projections.keepers_csv", "")
	v.SetDefault("event_log.path", "data/event_log.jsonl")

	v.SetDefault("advisor.enabled", false)
	v.SetDefault("advisor.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("advisor.model", "gemini-2.5-flash")
	v.SetDefault("advisor.timeout", "8s")
	v.SetDefault("advisor.cache_ttl", "10s")
	v.SetDefault("advisor.cooldown", "60s")
	v.SetDefault("advisor.rate_limit_trips", 3)

	v.SetDefault("cron.enabled", false)
	v.SetDefault("cron.export_spec", "0 */5 * * * *")
	v.SetDefault("cron.export_path", "data/draft_results.json")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
