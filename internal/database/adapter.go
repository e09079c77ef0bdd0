package database

import (
	"github.com/Majid-Chaudhary/oltp-sample/internal/database/common"
)

type (
	Adapter = common.Adapter
	Querier = common.Querier
	Tx      = common.Tx
	Scanner = common.Scanner
)

var ErrNoGeneratedID = common.ErrNoGeneratedID

var SupportedProviders = []string{"postgresql", "postgres", "pq", "mysql", "sqlite", "sqlite3"}

func IsSupportedProvider(provider string) bool {
	for _, p := range SupportedProviders {
		if p == provider {
			return true
		}
	}
	return false
}
