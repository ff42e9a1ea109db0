package fields

import "regexp"

// recognizer is one tolerant pattern over normalized text. group addresses
// the capture holding the field value.
//
// RE2 has no lookaround, so the trailing-context guards are spelled as an
// extra captured class ((\D|$) and friends) outside the value group.
type recognizer struct {
	re    *regexp.Regexp
	group int
}

var recognizers = map[string][]recognizer{
	DeliveryDate: {
		{regexp.MustCompile(`(?i)дата[:\s]*(\d{1,2}\.\d{1,2}\.\d{4})`), 1},
		{regexp.MustCompile(`(?i)(\d{1,2}\.\d{1,2}\.\d{4})(\D|$)`), 1},
		{regexp.MustCompile(`(?i)от\s+(\d{1,2}\.\d{1,2}\.\d{4})`), 1},
	},
	DocumentNumber: {
		{regexp.MustCompile(`(?i)№[\s:]*(\d+[/\\][А-Яа-яA-Za-z]+)`), 1},
		{regexp.MustCompile(`(?i)№[\s:]*(\d+)`), 1},
		{regexp.MustCompile(`(?i)ТТН[\s№:-]*(\d+[/\\][А-Яа-яA-Za-z]*)`), 1},
		{regexp.MustCompile(`(?i)накладная[\s№:]*(\d+[/\\]?[А-Яа-яA-Za-z]*)`), 1},
	},
	Supplier: {
		{regexp.MustCompile(`(?i)(ООО\s*["«][^"»\n]+["»])`), 1},
		{regexp.MustCompile(`(?i)(ЗАО\s*["«][^"»\n]+["»])`), 1},
		{regexp.MustCompile(`(?i)(ОАО\s*["«][^"»\n]+["»])`), 1},
		{regexp.MustCompile(`(?i)(?:грузоотправитель|отправитель)[:\s]*((?:ООО|ЗАО|ОАО)\s+[А-ЯЁ][А-ЯЁа-яё0-9\-]*(?:\s+[А-ЯЁ][А-ЯЁа-яё0-9\-]*)?)`), 1},
		{regexp.MustCompile(`(?i)(ИП\s+[А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+(?:\s+[А-ЯЁ][а-яё]+)?)`), 1},
	},
	MaterialType: {
		{regexp.MustCompile(`(?i)наименование[\s\-—–:]+([^,\n]{3,60}?)(?:,\s*\d+\s*шт|$)`), 1},
		{regexp.MustCompile(`(?i)груз[:\s]*наименование[\s\-—–:]+([^,\n]{3,60}?)(?:,|$)`), 1},
		{regexp.MustCompile(`(?i)(бортовой\s+камень[\s\d.×хxм]+)`), 1},
		{regexp.MustCompile(`(?i)(цемент[\s\pL\d]+)`), 1},
		{regexp.MustCompile(`(?i)(песок[\s\pL]+)`), 1},
		{regexp.MustCompile(`(?i)(щебень[\s\pL\d\-]+)`), 1},
		{regexp.MustCompile(`(?i)(кирпич[\s\pL]+)`), 1},
		{regexp.MustCompile(`(?i)(плитка[\s\pL\d×хxм]+)`), 1},
	},
	Quantity: {
		{regexp.MustCompile(`(?i)(\d+)\s*шт`), 1},
		{regexp.MustCompile(`(?i)(?:количество|кол[\-\s]*во)[:\s]*(\d+(?:[.,]\d+)?)(?:\s*шт|\s*тонн?|\s*т\.|\s*кг|\s*м³?|\s*м²)?`), 1},
		{regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:тонн|т\.)`), 1},
	},
	PackageCount: {
		{regexp.MustCompile(`(?i)(?:кол[\-\s]*во\s+мест|количество\s+мест)[:\s]*(\d+)`), 1},
		{regexp.MustCompile(`(?i)мест[:\s]*(\d+)`), 1},
		{regexp.MustCompile(`(?i)(\d+)\s*мест`), 1},
	},
	DriverName: {
		{regexp.MustCompile(`(?i)водитель[:\s]*([А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+(?:\s+[А-ЯЁ][а-яё]+)?)`), 1},
		{regexp.MustCompile(`(?i)ФИО\s+водителя[:\s]*([А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+(?:\s+[А-ЯЁ][а-яё]+)?)`), 1},
	},
	VehicleNumber: {
		{regexp.MustCompile(`(?i)автомобиль[:\s]*([А-ЯЁ]\d{3}[А-ЯЁ]{1,2}\d{2,3})`), 1},
		{regexp.MustCompile(`(?i)([А-ЯЁ]\d{3}[А-ЯЁ]{1,2}\d{2,3})([^0-9хx]|$)`), 1},
	},
	SupplierINN: {
		{regexp.MustCompile(`(?i)ИНН[:\s]*(\d{10,12})(\D|$)`), 1},
	},
	CargoWeight: {
		{regexp.MustCompile(`(?i)(?:вес|масса)[:\s]*(\d+(?:[.,]\d+)?)\s*(?:кг|т)`), 1},
		{regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:кг|тонн)`), 1},
	},
}
