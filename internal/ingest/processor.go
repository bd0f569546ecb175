package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fryerbot/internal/domain/catalogModel"

	"github.com/google/uuid"
)

var firstIntPattern = regexp.MustCompile(`\d+`)

// ForwardFill copies values down over blank cells for the merged-cell style
// columns, the sheet lists color variants under one model row.
func ForwardFill(rows []catalogModel.Row) {
	last := make(map[string]string, len(catalogModel.ForwardFillColumns))
	for _, row := range rows {
		for _, col := range catalogModel.ForwardFillColumns {
			if row[col] == "" {
				row[col] = last[col]
			} else {
				last[col] = row[col]
			}
		}
	}
}

// NormalizeRow extracts the numeric fields buyers filter on out of the
// free-form cells.
func NormalizeRow(row catalogModel.Row) catalogModel.Normalized {
	var n catalogModel.Normalized

	// volume uses a comma decimal separator
	volumeStr := strings.ReplaceAll(row[catalogModel.ColVolume], ",", ".")
	if v, err := strconv.ParseFloat(strings.TrimSpace(volumeStr), 64); err == nil {
		n.Volume = &v
	}

	if v, ok := firstInt(row[catalogModel.ColHeaters]); ok {
		n.HeaterCount = &v
	}
	if v, ok := firstInt(row[catalogModel.ColPower]); ok {
		n.Power = &v
	}
	if v, ok := firstInt(row[catalogModel.ColProgramCount]); ok {
		n.ProgramCount = &v
	}

	return n
}

func firstInt(cell string) (int, bool) {
	match := firstIntPattern.FindString(cell)
	if match == "" {
		return 0, false
	}
	v, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return v, true
}

// DocumentText is what gets embedded, a fixed field template so semantically
// equal rows embed equally.
func DocumentText(row catalogModel.Row) string {
	return strings.TrimSpace(fmt.Sprintf(`Модель: %s
Артикул: %s
Тип конструкции: %s
Объем: %s л
Кол-во ТЭНов: %s
Мощность: %s Вт
Кол-во программ: %s
Список программ: %s
Особенности: %s
Комплектация: %s`,
		row[catalogModel.ColModel],
		row[catalogModel.ColArticle],
		row[catalogModel.ColType],
		row[catalogModel.ColVolume],
		row[catalogModel.ColHeaters],
		row[catalogModel.ColPower],
		row[catalogModel.ColProgramCount],
		row[catalogModel.ColPrograms],
		row[catalogModel.ColFeatures],
		row[catalogModel.ColBundle],
	))
}

// PointID derives a stable point id from article and color, so re-uploading
// the same sheet overwrites instead of duplicating. MD5-based UUID keeps it
// deterministic and valid for Qdrant.
func PointID(article, color string) string {
	raw := fmt.Sprintf("%s_%s", article, strings.ToLower(color))
	return uuid.NewMD5(uuid.NameSpaceOID, []byte(raw)).String()
}

// BuildDocuments turns sheet rows into indexable documents. Rows without a
// model name or article are headers or trailing junk and get skipped.
func BuildDocuments(rows []catalogModel.Row) []catalogModel.Document {
	ForwardFill(rows)

	docs := make([]catalogModel.Document, 0, len(rows))
	for _, row := range rows {
		if row[catalogModel.ColModel] == "" || row[catalogModel.ColArticle] == "" {
			continue
		}

		payload := make(map[string]any, len(row)+8)
		for col, cell := range row {
			if cell == "" {
				continue
			}
			payload[col] = cell
		}

		// normalized aliases for payload filtering
		payload["model"] = row[catalogModel.ColModel]
		payload["article"] = row[catalogModel.ColArticle]
		payload["type"] = strings.ToLower(row[catalogModel.ColType])
		payload["color"] = strings.ToLower(row[catalogModel.ColColor])

		normalized := NormalizeRow(row)
		if normalized.Volume != nil {
			payload["volume"] = *normalized.Volume
		}
		if normalized.HeaterCount != nil {
			payload["ten_count"] = *normalized.HeaterCount
		}
		if normalized.Power != nil {
			payload["power"] = *normalized.Power
		}
		if normalized.ProgramCount != nil {
			payload["programs_count"] = *normalized.ProgramCount
		}

		docs = append(docs, catalogModel.Document{
			ID:      PointID(row[catalogModel.ColArticle], row[catalogModel.ColColor]),
			Text:    DocumentText(row),
			Payload: payload,
		})
	}
	return docs
}
