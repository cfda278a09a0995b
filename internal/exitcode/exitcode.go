package exitcode

const (
	Success        = 0
	UsageError     = 1
	InputError     = 2
	DBConnError    = 3
	StoreError     = 4
	MigrationError = 5
)
