package tree

import (
	"errors"
)

var (
	ErrUnknownPolicy       = errors.New("[tree] unknown balancing policy")
	ErrOrderViolation      = errors.New("[tree] order violation")
	ErrAVLBalanceViolation = errors.New("[avltree] balance violation")
	ErrAVLHeightViolation  = errors.New("[avltree] height violation")
	ErrRBRootViolation     = errors.New("[rbtree] root violation")
	ErrRBRedViolation      = errors.New("[rbtree] red violation")
	ErrRBBlackViolation    = errors.New("[rbtree] black violation")
	ErrRBParentViolation   = errors.New("[rbtree] parent violation")
)
