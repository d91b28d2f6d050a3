package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
)

var ErrConfigLoad = errors.New("load config")

var (
	DefaultAttributes       = []string{"ALL"}
	DefaultFeatureBlacklist = []string{"Landmarks", "Emotions", "Pose", "Quality", "BoundingBox", "Confidence"}
)

const DefaultPartitionKey = "partitionkey"

// Params is the static parameter file read once at cold start.
type Params struct {
	Timezone            string `json:"timezone"              validate:"required"`
	OutputKinesisStream string `json:"output_kinesis_stream" validate:"required"`

	RekogAttributes        []string `json:"rekog_attributes"`
	RekogFeaturesBlacklist []string `json:"rekog_features_blacklist"`
	ApplyFeaturesBlacklist bool     `json:"apply_features_blacklist"`
	PartitionKey           string   `json:"partition_key"`
}

func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfigLoad, path, err)
	}
	return ParseParams(data)
}

func ParseParams(data []byte) (*Params, error) {
	p := &Params{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: parse params: %v", ErrConfigLoad, err)
	}
	if err := validator.New().Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}

	if len(p.RekogAttributes) == 0 {
		p.RekogAttributes = slices.Clone(DefaultAttributes)
	}
	if p.RekogFeaturesBlacklist == nil {
		p.RekogFeaturesBlacklist = slices.Clone(DefaultFeatureBlacklist)
	}
	if p.PartitionKey == "" {
		p.PartitionKey = DefaultPartitionKey
	}
	return p, nil
}
