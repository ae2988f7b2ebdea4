package jobfilter

import (
	"github.com/jobboard/jobfilter/jobfilter/attrcache"
	"github.com/jobboard/jobfilter/jobfilter/query"
)

const (
	DefaultPerPage            = 15
	DefaultMaxPerPage         = 100
	DefaultMaxDepth           = query.DefaultMaxDepth
	DefaultAttributeCacheSize = attrcache.DefaultSize
	DefaultAttributeCacheTTL  = attrcache.DefaultTTL
)
