package sqlite

import "github.com/jobboard/jobfilter/jobfilter/storage"

var SQLTemplates = storage.SQL{
	GetMeta: "SELECT value FROM jobfilter_meta WHERE key = ?1",
	SetMeta: "INSERT INTO jobfilter_meta(key,value) VALUES(?1,?2) ON CONFLICT(key) DO UPDATE SET value=excluded.value",
}
