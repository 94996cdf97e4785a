package tree

import (
	"context"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	TreeStatsName = "xtree/tree"
)

const (
	rbInsertCase1 = "insert.case1" // uncle is red, recolor
	rbInsertCase2 = "insert.case2" // zig-zag, rotate parent
	rbInsertCase3 = "insert.case3" // straight line, rotate grandpa
	rbDeleteCase1 = "delete.case1" // sibling is red
	rbDeleteCase2 = "delete.case2" // sibling and nephews are black
	rbDeleteCase3 = "delete.case3" // near nephew is red, far nephew is black
	rbDeleteCase4 = "delete.case4" // far nephew is red
)

// treeStats exports the rebalancing work. The methods are nil-safe,
// a tree without stats records nothing.
type treeStats struct {
	policy     attribute.KeyValue
	rotations  metric.Int64Counter
	rebalances metric.Int64Counter
	nodes      metric.Int64UpDownCounter
}

func newTreeStats(mp metric.MeterProvider, policy Policy) *treeStats {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(TreeStatsName)
	return &treeStats{
		policy: attribute.String("xtree.policy", policy.String()),
		rotations: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.rotations",
			metric.WithDescription(`The count of the left and right rotations.`),
		)),
		rebalances: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.rebalance.cases",
			metric.WithDescription(`The count of the rebalancing cases after insert and delete.`),
		)),
		nodes: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"xtree.nodes",
			metric.WithDescription(`The count of the live nodes.`),
		)),
	}
}

func (stats *treeStats) RecordRotation(dir Direction) {
	if stats == nil {
		return
	}
	stats.rotations.Add(context.Background(), 1, metric.WithAttributes(
		stats.policy,
		attribute.String("xtree.direction", dir.String()),
	))
}

func (stats *treeStats) RecordRebalanceCase(name string, side Direction) {
	if stats == nil {
		return
	}
	stats.rebalances.Add(context.Background(), 1, metric.WithAttributes(
		stats.policy,
		attribute.String("xtree.case", name),
		attribute.String("xtree.side", side.String()),
	))
}

func (stats *treeStats) RecordNodeCount(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.nodes.Add(context.Background(), delta, metric.WithAttributes(stats.policy))
}
