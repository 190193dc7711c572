package models

// TransferSequence is the single-row counter backing transfer number
// allocation. The row is updated atomically inside a transaction so two
// concurrent imports can never observe the same value.
type TransferSequence struct {
	ID        int   `gorm:"column:id;primaryKey"`
	LastValue int64 `gorm:"column:last_value;not null;default:0"`
}

// TableName pins the table name so gorm does not pluralize it oddly.
func (TransferSequence) TableName() string {
	return "transfer_sequences"
}
