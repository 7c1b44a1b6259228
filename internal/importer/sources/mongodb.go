package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"chartdesk/internal/importer"
)

// ── MongoDB Source ──────────────────────────────────────────
// Reads records from a MongoDB collection. Documents are flattened one
// level; nested documents and arrays are kept as their JSON rendering
// so they stay chartable as labels.

type mongoSource struct{}

func init() { importer.RegisterSource(&mongoSource{}) }

func (s *mongoSource) Spec() importer.SourceSpec {
	return importer.SourceSpec{
		Type:  "mongo",
		Label: "MongoDB Collection",
		ConfigFields: []importer.ConfigField{
			{Key: "uri", Label: "Connection URI", Type: "password", Required: true, Help: "mongodb:// or mongodb+srv:// URI"},
			{Key: "database", Label: "Database", Type: "string", Required: true},
			{Key: "collection", Label: "Collection", Type: "string", Required: true},
			{Key: "filter", Label: "Filter", Type: "textarea", Required: false, Default: "{}", Help: "JSON find filter"},
			{Key: "limit", Label: "Limit", Type: "string", Required: false, Default: "10000"},
		},
	}
}

func resolveMongoConfig(cfg importer.SourceConfig) (uri, dbName, coll string, filter bson.M, limit int64, err error) {
	uri, _ = cfg["uri"].(string)
	dbName, _ = cfg["database"].(string)
	coll, _ = cfg["collection"].(string)
	if uri == "" || dbName == "" || coll == "" {
		return "", "", "", nil, 0, fmt.Errorf("uri, database and collection are required")
	}

	filter = bson.M{}
	if raw, ok := cfg["filter"].(string); ok && raw != "" && raw != "{}" {
		if err := json.Unmarshal([]byte(raw), &filter); err != nil {
			return "", "", "", nil, 0, fmt.Errorf("parse filter: %w", err)
		}
	}

	limit = 10000
	if raw, ok := cfg["limit"].(string); ok && raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil {
			return "", "", "", nil, 0, fmt.Errorf("parse limit: %w", err)
		}
	}
	return uri, dbName, coll, filter, limit, nil
}

func (s *mongoSource) Discover(ctx context.Context, cfg importer.SourceConfig) (*importer.Schema, error) {
	uri, dbName, coll, filter, _, err := resolveMongoConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	defer client.Disconnect(context.Background())

	findCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	// Sample one document; its key order becomes the column order.
	var doc bson.D
	err = client.Database(dbName).Collection(coll).FindOne(findCtx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &importer.Schema{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sample document: %w", err)
	}

	schema := &importer.Schema{Fields: make([]importer.Field, 0, len(doc))}
	for _, elem := range doc {
		schema.Fields = append(schema.Fields, importer.Field{Name: elem.Key, Type: "text"})
	}
	return schema, nil
}

func (s *mongoSource) Read(ctx context.Context, cfg importer.SourceConfig) (<-chan importer.Record, <-chan error) {
	out := make(chan importer.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		uri, dbName, coll, filter, limit, err := resolveMongoConfig(cfg)
		if err != nil {
			errCh <- err
			return
		}

		client, err := mongo.Connect(options.Client().ApplyURI(uri))
		if err != nil {
			errCh <- fmt.Errorf("connect mongo: %w", err)
			return
		}
		defer client.Disconnect(context.Background())

		cursor, err := client.Database(dbName).Collection(coll).
			Find(ctx, filter, options.Find().SetLimit(limit))
		if err != nil {
			errCh <- fmt.Errorf("find: %w", err)
			return
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var doc bson.M
			if err := cursor.Decode(&doc); err != nil {
				errCh <- fmt.Errorf("decode document: %w", err)
				return
			}

			data := make(map[string]any, len(doc))
			for k, v := range doc {
				data[k] = normalizeBSONValue(v)
			}

			select {
			case out <- importer.Record{Data: data}:
			case <-ctx.Done():
				return
			}
		}
		if err := cursor.Err(); err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

// normalizeBSONValue converts BSON-specific types into the JSON-friendly
// scalars the rest of the pipeline expects.
func normalizeBSONValue(v any) any {
	switch t := v.(type) {
	case bson.ObjectID:
		return t.Hex()
	case bson.DateTime:
		return t.Time().Format(time.RFC3339)
	case bson.Decimal128:
		return t.String()
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case bson.M, bson.D, bson.A:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	default:
		return t
	}
}
