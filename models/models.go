package models

// All returns every table model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&SsoProvider{},
		&UserIdentity{},
		&Profile{},
		&Image{},
		&Item{},
		&SellRequest{},
		&PawnRequest{},
		&PawnTransaction{},
		&Listing{},
		&ListingLike{},
		&ListingComment{},
		&ListingInquiry{},
	}
}
