package dbx

// ConnConfig represents the configuration required for database connection.
//
// When CloudSqlInstance is set the connection goes through the Cloud SQL unix socket
// mounted under /cloudsql, and Host/Port are ignored.
type ConnConfig struct {
	Host             string
	Port             int32
	DBName           string
	User             string
	Password         string
	MaxConn          int32
	MinConn          int32
	CloudSqlInstance string
}
