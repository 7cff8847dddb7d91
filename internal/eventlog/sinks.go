// internal/eventlog/sinks.go
package eventlog

import (
	"context"
	"encoding/json"
	"time"

	"custom-pricing-service/internal/common/database"
	"custom-pricing-service/internal/common/logger"
)

// ZapSink mirrors event log entries to the structured logger.
type ZapSink struct {
	logger logger.Logger
}

func NewZapSink(log logger.Logger) *ZapSink {
	return &ZapSink{logger: log}
}

func (s *ZapSink) Write(entry Entry) {
	fields := map[string]interface{}{
		"action": entry.Action,
	}
	for k, v := range entry.Fields {
		fields[k] = v
	}

	switch entry.Level {
	case LevelError:
		s.logger.Error("lifecycle event", fields)
	case LevelWarn:
		s.logger.Warn("lifecycle event", fields)
	case LevelAlarm:
		s.logger.Error("lifecycle alarm", fields)
	default:
		s.logger.Info("lifecycle event", fields)
	}
}

// ElasticsearchSink forwards entries to an Elasticsearch index for
// long-term retention. Delivery is best effort.
type ElasticsearchSink struct {
	client *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewElasticsearchSink(client *database.ElasticsearchClient, index string, log logger.Logger) *ElasticsearchSink {
	if index == "" {
		index = "variant-lifecycle-events"
	}
	return &ElasticsearchSink{client: client, index: index, logger: log}
}

func (s *ElasticsearchSink) Write(entry Entry) {
	doc, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("failed to encode event for elasticsearch", map[string]interface{}{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.client.IndexDocument(ctx, s.index, doc); err != nil {
		s.logger.Warn("failed to index event in elasticsearch", map[string]interface{}{"error": err.Error()})
	}
}
