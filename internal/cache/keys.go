package cache

// JobsKey holds the job list. It never expires until cleared.
const JobsKey = "jobs"

// ParamsKey holds the parameter definitions of job.
func ParamsKey(job string) string {
	return job + "_params"
}

// HistoryKey holds the recent builds of job.
func HistoryKey(job string) string {
	return "build_history_" + job
}
