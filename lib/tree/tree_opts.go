package tree

import (
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/xlog"
)

type treeOptions struct {
	isDesc        bool
	logger        xlog.XLogger
	meterProvider metric.MeterProvider
}

type TreeOption func(*treeOptions)

// WithTreeDesc orders the keys from the greatest to the least.
func WithTreeDesc() TreeOption {
	return func(opts *treeOptions) {
		opts.isDesc = true
	}
}

// WithTreeLogger receives the debug diagnostics of the no-op
// operations, e.g. duplicate insert and absent delete.
func WithTreeLogger(logger xlog.XLogger) TreeOption {
	return func(opts *treeOptions) {
		opts.logger = logger
	}
}

// WithTreeMeterProvider overrides the otel global meter provider.
func WithTreeMeterProvider(mp metric.MeterProvider) TreeOption {
	return func(opts *treeOptions) {
		opts.meterProvider = mp
	}
}

// treeCore is the state shared by both balancers except the root slot.
type treeCore[K infra.OrderedKey] struct {
	count  int64
	policy Policy
	keyCmp infra.OrderedKeyComparator[K]
	logger xlog.XLogger
	stats  *treeStats
}

func newTreeCore[K infra.OrderedKey](policy Policy, opts ...TreeOption) treeCore[K] {
	o := &treeOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	core := treeCore[K]{
		policy: policy,
		keyCmp: infra.AscKeyComparator[K],
		logger: o.logger,
		stats:  newTreeStats(o.meterProvider, policy),
	}
	if o.isDesc {
		core.keyCmp = infra.DescKeyComparator[K]
	}
	return core
}

func (core *treeCore[K]) Policy() Policy {
	return core.policy
}

func (core *treeCore[K]) keyCompare(k1, k2 K) int64 {
	return core.keyCmp(k1, k2)
}

func (core *treeCore[K]) debug(msg string, key K) {
	if core.logger == nil {
		return
	}
	core.logger.Debug(msg,
		zap.Any("key", key),
		zap.String("policy", core.policy.String()),
	)
}

// NewOrderedSet builds the facade for the policy, the unknown
// policy is a programming error.
func NewOrderedSet[K infra.OrderedKey](policy Policy, opts ...TreeOption) OrderedSet[K] {
	switch policy {
	case AVL:
		return NewAVLTree[K](opts...)
	case RedBlack:
		return NewRBTree[K](opts...)
	default:
	}
	panic( /* debug assertion */ "[tree] unknown balancing policy " + policy.String())
}

// ParsePolicy accepts the policy names used by the command line.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "avl", "AVL":
		return AVL, nil
	case "rb", "RB", "redblack", "red-black", "RedBlack":
		return RedBlack, nil
	default:
	}
	return 0, ErrUnknownPolicy
}
