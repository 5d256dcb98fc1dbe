package models

// Category describes one document category users can order.
type Category struct {
	Key  string
	Name string
	// BasePrice is in rubles; the issued amount adds a two-digit kopeck
	// offset on top of BasePrice*100.
	BasePrice int64
	// Labels is the fixed set of document subtypes the classifier may pick
	// from. Single-label categories skip classification entirely.
	Labels []string
	// DefaultLabel is used when the classifier output is not in Labels.
	DefaultLabel string
}

// Categories is the fixed catalog, in menu order.
var Categories = []Category{
	{
		Key:          "prosecutor",
		Name:         "Жалоба в прокуратуру",
		BasePrice:    700,
		Labels:       []string{"Жалоба в прокуратуру"},
		DefaultLabel: "Жалоба в прокуратуру",
	},
	{
		Key:       "court",
		Name:      "Исковое заявление в суд",
		BasePrice: 1500,
		Labels: []string{
			"Исковое заявление",
			"Ходатайство",
			"Апелляционная жалоба",
		},
		DefaultLabel: "Исковое заявление",
	},
	{
		Key:          "mvd",
		Name:         "Жалоба в МВД",
		BasePrice:    800,
		Labels:       []string{"Жалоба в МВД"},
		DefaultLabel: "Жалоба в МВД",
	},
	{
		Key:          "zkh",
		Name:         "Жалоба в жилищинспекцию / Роспотребнадзор",
		BasePrice:    600,
		Labels:       []string{"Жалоба в жилищную инспекцию", "Жалоба в Роспотребнадзор"},
		DefaultLabel: "Жалоба в жилищную инспекцию",
	},
	{
		Key:          "consumer",
		Name:         "Претензия по защите прав потребителей",
		BasePrice:    500,
		Labels:       []string{"Претензия по защите прав потребителей"},
		DefaultLabel: "Претензия по защите прав потребителей",
	},
}

// CategoryByKey looks a category up by its callback key.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
