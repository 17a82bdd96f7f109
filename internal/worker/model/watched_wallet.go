package model

// WatchedWallet 实时交易推送关注的钱包
type WatchedWallet struct {
	Address           string  `gorm:"column:address;type:varchar(64);primaryKey" json:"address"`
	Username          string  `gorm:"column:username;type:varchar(128)" json:"username"`
	ProfilePictureURL *string `gorm:"column:profile_picture_url" json:"profile_picture_url"`
}

func (*WatchedWallet) TableName() string {
	return "watched_addresses"
}
