package catalogModel

// Column headers of the supplier catalog sheet. The sheet is Russian and
// the headers are part of the data contract, so they stay verbatim.
const (
	ColModel        = "Название модели"
	ColArticle      = "Артикул"
	ColType         = "Тип конструкции"
	ColColor        = "Цвет"
	ColPhoto        = "Фото"
	ColVolume       = "Объем, л"
	ColHeaters      = "Кол-во ТЭНов"
	ColProgramCount = "Кол-во программ"
	ColPrograms     = "Список программ"
	ColPower        = "Мощность, Вт"
	ColBodyMaterial = "Материал корпуса"
	ColBowlCoating  = "Покрытие чаши"
	ColGrillCoating = "Покрытие решетки"
	ColTemperature  = "Температура"
	ColTime         = "Время"
	ColFeatures     = "Особенности"
	ColBundle       = "Комплектация"
	ColAccessories  = "Совместимость с акскессуарами"
	ColCapacity     = "Пример вместимости"
)

// ForwardFillColumns lists the columns whose blank cells inherit the value
// above them, the sheet uses merged-cell style rows per color variant.
var ForwardFillColumns = []string{
	ColType, ColModel, ColArticle, ColColor, ColPhoto,
	ColVolume, ColHeaters, ColProgramCount, ColPrograms,
	ColPower, ColBodyMaterial, ColBowlCoating, ColGrillCoating,
	ColTemperature, ColTime, ColFeatures, ColBundle,
	ColAccessories, ColCapacity,
}

// Row is one sheet row keyed by header.
type Row map[string]string

// Normalized carries the numeric fields extracted from free-form cells.
// Nil means the cell was empty or unparseable.
type Normalized struct {
	Volume       *float64 `json:"volume"`
	HeaterCount  *int     `json:"ten_count"`
	Power        *int     `json:"power"`
	ProgramCount *int     `json:"programs_count"`
}

// Document is one indexable catalog entry: the embedding text plus the full
// payload stored alongside the vector.
type Document struct {
	ID      string
	Text    string
	Payload map[string]any
}

// SearchHit is a scored match returned by the vector store.
type SearchHit struct {
	ID      string
	Score   float32
	Text    string
	Model   string
	Article string
}
