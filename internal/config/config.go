package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/crewlab/peereval/internal/trust"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthSecret    string
	AdminUser     string
	AdminPassHash string // bcrypt

	// ViewerAccounts maps read-only usernames to bcrypt password hashes,
	// parsed from VIEWER_ACCOUNTS as "user:hash,user:hash".
	ViewerAccounts map[string]string

	// RunLockTTL is how long a claimed run lock stays valid before another
	// run may reclaim it (covers a crashed run that never released).
	RunLockTTL time.Duration

	// Trust carries the weighting thresholds, every one overridable via
	// TRUST_* env vars on top of trust.DefaultConfig().
	Trust trust.Config

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           addr,
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		AuthSecret:         envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:          envOr("ADMIN_USER", "admin"),
		AdminPassHash:      envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		ViewerAccounts:     accountsOr("VIEWER_ACCOUNTS", ""),
		RunLockTTL:         durationOr("RUN_LOCK_TTL", 10*time.Minute),
		Trust:              trustFromEnv(),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://peereval.crewlab.dev"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000"),
	}
}

func trustFromEnv() trust.Config {
	c := trust.DefaultConfig()

	c.MinScores = envInt("TRUST_MIN_SCORES", c.MinScores)
	c.FloorWeight = envFloat("TRUST_FLOOR_WEIGHT", c.FloorWeight)

	c.WarmMean = envFloat("TRUST_WARM_MEAN", c.WarmMean)
	c.WarmMeanSevere = envFloat("TRUST_WARM_MEAN_SEVERE", c.WarmMeanSevere)
	c.ColdMean = envFloat("TRUST_COLD_MEAN", c.ColdMean)
	c.ColdMeanSevere = envFloat("TRUST_COLD_MEAN_SEVERE", c.ColdMeanSevere)
	c.BiasPenalty = envFloat("TRUST_BIAS_PENALTY", c.BiasPenalty)
	c.BiasPenaltySev = envFloat("TRUST_BIAS_PENALTY_SEVERE", c.BiasPenaltySev)

	c.HighMaxPct = envFloat("TRUST_HIGH_MAX_PCT", c.HighMaxPct)
	c.VeryHighMaxPct = envFloat("TRUST_VERY_HIGH_MAX_PCT", c.VeryHighMaxPct)
	c.MaxPctPenalty = envFloat("TRUST_MAX_PCT_PENALTY", c.MaxPctPenalty)
	c.VeryMaxPctPenalty = envFloat("TRUST_VERY_MAX_PCT_PENALTY", c.VeryMaxPctPenalty)

	c.LowMinPct = envFloat("TRUST_LOW_MIN_PCT", c.LowMinPct)
	c.ElevatedMean = envFloat("TRUST_ELEVATED_MEAN", c.ElevatedMean)
	c.MinAvoidedPenalty = envFloat("TRUST_MIN_AVOIDED_PENALTY", c.MinAvoidedPenalty)

	c.OneValuePenalty = envFloat("TRUST_ONE_VALUE_PENALTY", c.OneValuePenalty)
	c.TwoValuePenalty = envFloat("TRUST_TWO_VALUE_PENALTY", c.TwoValuePenalty)
	c.LowStdDev = envFloat("TRUST_LOW_STDDEV", c.LowStdDev)
	c.LowStdDevSamples = envInt("TRUST_LOW_STDDEV_SAMPLES", c.LowStdDevSamples)
	c.LowStdDevPenalty = envFloat("TRUST_LOW_STDDEV_PENALTY", c.LowStdDevPenalty)

	c.LowIntraPeerSpread = envFloat("TRUST_LOW_INTRA_PEER_SPREAD", c.LowIntraPeerSpread)
	c.IntraPeerSamples = envInt("TRUST_INTRA_PEER_SAMPLES", c.IntraPeerSamples)
	c.IntraPeerPenalty = envFloat("TRUST_INTRA_PEER_PENALTY", c.IntraPeerPenalty)

	c.HighConsensusDev = envFloat("TRUST_HIGH_CONSENSUS_DEV", c.HighConsensusDev)
	c.ConsensusSamples = envInt("TRUST_CONSENSUS_SAMPLES", c.ConsensusSamples)
	c.ConsensusDevPenalty = envFloat("TRUST_CONSENSUS_DEV_PENALTY", c.ConsensusDevPenalty)

	c.CoverageBonusPct = envFloat("TRUST_COVERAGE_BONUS_PCT", c.CoverageBonusPct)
	c.CoverageBonusHighPct = envFloat("TRUST_COVERAGE_BONUS_HIGH_PCT", c.CoverageBonusHighPct)
	c.CoverageBonus = envFloat("TRUST_COVERAGE_BONUS", c.CoverageBonus)

	return c
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durationOr(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func accountsOr(k, def string) map[string]string {
	out := map[string]string{}
	for _, pair := range csvOr(k, def) {
		name, hash, ok := strings.Cut(pair, ":")
		if !ok || name == "" || hash == "" {
			continue
		}
		out[name] = hash
	}
	return out
}
