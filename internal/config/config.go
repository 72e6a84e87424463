package config

import (
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ZilDuck/zilliqa-marketplace/internal/log"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Env     string
	Network string
	Index   string
	Debug   bool

	ApiPort    string
	HealthPort string

	Owner      string
	Treasury   string
	Custodian  string
	SellFeeBps uint
	BuyFeeBps  uint

	LogPath string

	Zilliqa       ZilliqaConfig
	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
}

type AwsConfig struct {
	AccessKey string
	SecretKey string
	Region    string
}

type ZilliqaConfig struct {
	Url     string
	Debug   bool
	Timeout int
}

type ElasticSearchConfig struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	MappingDir       string
	BulkPersistCount int
	Refresh          string
}

func Init(app string) {
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Unable to load .env")
	}

	initLogger(app)
}

func initLogger(app string) {
	log.NewLogger(Get().LogPath+"/"+app+".log", Get().Debug)
}

func Get() *Config {
	return &Config{
		Env:        getString("ENV", ""),
		Network:    getString("NETWORK", "zilliqa"),
		Index:      getString("INDEX_NAME", "marketplace"),
		Debug:      getBool("DEBUG", false),
		ApiPort:    getString("API_PORT", "8080"),
		HealthPort: getString("HEALTH_PORT", "8081"),
		Owner:      getString("MARKETPLACE_OWNER", ""),
		Treasury:   getString("MARKETPLACE_TREASURY", ""),
		Custodian:  getString("MARKETPLACE_CUSTODIAN", ""),
		SellFeeBps: getUint("MARKETPLACE_SELL_FEE_BPS", 0),
		BuyFeeBps:  getUint("MARKETPLACE_BUY_FEE_BPS", 0),
		LogPath:    getString("LOG_PATH", "./var/logs"),
		Aws: AwsConfig{
			AccessKey: getString("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getString("AWS_SECRET_KEY_ID", ""),
			Region:    getString("AWS_REGION", ""),
		},
		Zilliqa: ZilliqaConfig{
			Url:     getString("ZILLIQA_URL", ""),
			Timeout: getInt("ZILLIQA_TIMEOUT", 30),
			Debug:   getBool("ZILLIQA_DEBUG", false),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:            getSlice("ELASTIC_SEARCH_HOSTS", make([]string, 0), ","),
			Sniff:            getBool("ELASTIC_SEARCH_SNIFF", true),
			HealthCheck:      getBool("ELASTIC_SEARCH_HEALTH_CHECK", true),
			Debug:            getBool("ELASTIC_SEARCH_DEBUG", false),
			Username:         getString("ELASTIC_SEARCH_USERNAME", ""),
			Password:         getString("ELASTIC_SEARCH_PASSWORD", ""),
			MappingDir:       getString("ELASTIC_SEARCH_MAPPING_DIR", "./mappings"),
			BulkPersistCount: getInt("ELASTIC_SEARCH_BULK_PERSIST_COUNT", 300),
			Refresh:          getString("ELASTIC_SEARCH_REFRESH", "wait_for"),
		},
	}
}

func getString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, _, err := big.ParseFloat(valStr, 10, 0, big.ToNearestEven)
	if err != nil {
		return defaultValue
	}

	intVal, _ := val.Int64()
	return int(intVal)
}

func getUint(key string, defaultValue uint) uint {
	return uint(getInt(key, int(defaultValue)))
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := getString(key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
