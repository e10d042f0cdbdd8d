package store

// Models lists every table this package stores, for InitDatabase
func Models() []Persistable {
	return []Persistable{
		&historicalRow{},
		&scenarioRow{},
		&snapshotRow{},
	}
}
