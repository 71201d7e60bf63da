package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "ECLYPSE_CONFIG_FILE"

type consumers struct {
	SalesGroup string `mapstructure:"sales_group"`
}

type topics struct {
	Orders           string `mapstructure:"orders"`
	StockAdjustments string `mapstructure:"stock_adjustments"`
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

type session struct {
	LoginLatency time.Duration `mapstructure:"login_latency"`
}

type checkout struct {
	FreeShippingThreshold float64       `mapstructure:"free_shipping_threshold"`
	ShippingFee           float64       `mapstructure:"shipping_fee"`
	TaxRate               float64       `mapstructure:"tax_rate"`
	ProcessingDelay       time.Duration `mapstructure:"processing_delay"`
}

type stock struct {
	LowStockThreshold int           `mapstructure:"low_stock_threshold"`
	JitterInterval    time.Duration `mapstructure:"jitter_interval"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	SQLDB          string     `mapstructure:"sql_db"`
	StateFile      string     `mapstructure:"state_file"`
	Session        session    `mapstructure:"session"`
	Checkout       checkout   `mapstructure:"checkout"`
	Stock          stock      `mapstructure:"stock"`
	Broker         broker     `mapstructure:"broker"`
}

func Load() Config {
	viper.SetDefault("checkout.free_shipping_threshold", 50)
	viper.SetDefault("checkout.shipping_fee", 5.99)
	viper.SetDefault("checkout.tax_rate", 0.23)

	viper.SetConfigFile(getConfigFilepath())

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg)
	if err != nil {
		die(err)
	}

	return cfg
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	template := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	SQLDB=%q
	StateFile=%q

	Session:
	LoginLatency=%s

	Checkout:
	FreeShippingThreshold=%v
	ShippingFee=%v
	TaxRate=%v
	ProcessingDelay=%s

	Stock:
	LowStockThreshold=%d
	JitterInterval=%s

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		Orders=%q
		StockAdjustments=%q
	Consumers:
		SalesGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.SQLDB,
		c.StateFile,
		c.Session.LoginLatency,
		c.Checkout.FreeShippingThreshold,
		c.Checkout.ShippingFee,
		c.Checkout.TaxRate,
		c.Checkout.ProcessingDelay,
		c.Stock.LowStockThreshold,
		c.Stock.JitterInterval,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.Orders,
		c.Broker.Topics.StockAdjustments,
		c.Broker.Consumers.SalesGroup,
	)
}
