package models

import "encoding/json"

// NullableID различает три состояния необязательной ссылки в JSON-запросе:
// поле отсутствует (Set=false, оставить как есть), передан null
// (Set=true, Valid=false, сбросить ссылку) и передано число
// (Set=true, Valid=true, установить значение).
type NullableID struct {
	Set   bool
	Valid bool
	ID    uint
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Valid = false
		n.ID = 0
		return nil
	}
	if err := json.Unmarshal(data, &n.ID); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n NullableID) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.ID)
}

// Ptr возвращает значение в виде *uint (nil для null)
func (n NullableID) Ptr() *uint {
	if !n.Valid {
		return nil
	}
	id := n.ID
	return &id
}
