// Package db fetches shared song presets from a DynamoDB table, so a
// group can pool their per-song tunings. Strictly optional: everything
// works from local preset files alone.
package db

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"

	"github.com/nexply/Auto-play/model"
)

const tableName = "autoplay-presets"

// GetSongPresets batch-fetches presets by song name. DynamoDB caps batch
// gets, so callers pass at most 10 names per call.
func GetSongPresets(endpoint string, songs []string) (map[string]model.Preset, error) {
	if len(songs) > 10 {
		return nil, fmt.Errorf("db: at most 10 songs per batch, got %d", len(songs))
	}

	res := make(map[string]model.Preset)
	if len(songs) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, song := range songs {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(song)},
		})
	}

	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("db: creating session: %w", err)
	}

	client := dynamodb.New(sess)
	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			tableName: {Keys: keys},
		},
	}
	out, err := client.BatchGetItem(input)
	if err != nil {
		return nil, fmt.Errorf("db: batch get: %w", err)
	}

	for _, item := range out.Responses[tableName] {
		if item["PK"] == nil || item["PK"].S == nil || item["Preset"] == nil || item["Preset"].S == nil {
			continue
		}
		var p model.Preset
		if err := json.Unmarshal([]byte(*item["Preset"].S), &p); err != nil {
			continue
		}
		res[*item["PK"].S] = p
	}
	return res, nil
}
