package gorm

// All lists every model managed by AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Role{},
		&UserRole{},
		&Feature{},
		&UserFeature{},
		&UserAuthProfile{},
		&Ban{},
		&Subscription{},
		&Payment{},
	}
}
