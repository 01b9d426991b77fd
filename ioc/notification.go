package ioc

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/market-pulse/internal/service/notification"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

// InitSink returns the sink and a close func for its underlying resources.
func InitSink() (notification.Sink, func() error) {
	type Config struct {
		Sink  string `mapstructure:"sink"`
		Kafka struct {
			Brokers []string `mapstructure:"brokers"`
			Topic   string   `mapstructure:"topic"`
		} `mapstructure:"kafka"`
	}

	cfg := Config{Sink: "log"}
	if err := viper.UnmarshalKey("notification", &cfg); err != nil {
		panic(err)
	}

	switch cfg.Sink {
	case "log":
		return notification.NewLogSink(slog.Default()), func() error { return nil }
	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
			panic("notification.kafka.brokers and notification.kafka.topic are required")
		}
		writer := &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		}
		return notification.NewKafkaSink(writer), writer.Close
	default:
		panic(fmt.Errorf("unsupported notification sink %q", cfg.Sink))
	}
}
