package stats

import "github.com/BuzzLyutic/study-analytics/internal/model"

const (
	premiumNotes = 50
	premiumTasks = 100
)

type MemberLevel string

const (
	MemberFree    MemberLevel = "free"
	MemberPremium MemberLevel = "premium"
)

type AccountStats struct {
	MemberLevel       MemberLevel `json:"member_level"`
	StorageUsedBytes  int64       `json:"storage_used_bytes"`
	StorageLimitBytes int64       `json:"storage_limit_bytes"`
	StoragePercentage int         `json:"storage_percentage"`
	TotalNotes        int         `json:"total_notes"`
	TotalTasks        int         `json:"total_tasks"`
	CompletedTasks    int         `json:"completed_tasks"`
}

// Account reports storage usage as the UTF-8 size of all note content.
func Account(notes []model.Note, totalTasks, completedTasks int, limitBytes int64) AccountStats {
	var used int64
	for _, n := range notes {
		used += int64(len(n.Content))
	}

	level := MemberFree
	if len(notes) > premiumNotes || totalTasks > premiumTasks {
		level = MemberPremium
	}

	st := AccountStats{
		MemberLevel:       level,
		StorageUsedBytes:  used,
		StorageLimitBytes: limitBytes,
		TotalNotes:        len(notes),
		TotalTasks:        totalTasks,
		CompletedTasks:    completedTasks,
	}
	if limitBytes > 0 {
		st.StoragePercentage = int(float64(used)/float64(limitBytes)*100 + 0.5)
	}
	return st
}
