package storage

import (
	"fmt"
	"time"
)

// Layer names the medallion layers of the object store.
type Layer string

const (
	LayerBronze Layer = "bronze"
	LayerSilver Layer = "silver"
	LayerGold   Layer = "gold"
)

const datasetPrefix = "economic_indicators"

// IndicatorPrefix is the key prefix under which every snapshot of an
// indicator lives in a layer.
func IndicatorPrefix(layer Layer, indicator string) string {
	return fmt.Sprintf("%s/%s/%s_", layer, datasetPrefix, indicator)
}

// TimestampedKey builds an immutable snapshot key. Keys embed a UTC
// timestamp so that the lexicographically greatest key under a prefix is
// always the newest snapshot.
func TimestampedKey(layer Layer, indicator, ext string, at time.Time) string {
	return fmt.Sprintf("%s%s.%s", IndicatorPrefix(layer, indicator), at.UTC().Format("20060102_150405"), ext)
}

// GoldKey builds an immutable snapshot key for a gold product under the
// dashboards namespace.
func GoldKey(product, ext string, at time.Time) string {
	return fmt.Sprintf("%s/dashboards/%s_%s.%s", LayerGold, product, at.UTC().Format("20060102_150405"), ext)
}

// GoldPrefix is the key prefix of a gold product's snapshots.
func GoldPrefix(product string) string {
	return fmt.Sprintf("%s/dashboards/%s_", LayerGold, product)
}
