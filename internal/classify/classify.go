// Package classify tags events with a category and a target age group
// by first-match keyword lookup. The tables are process-wide, read-only
// and ordered: earlier entries take priority, so table order must be
// preserved when adding keywords.
package classify

import "strings"

type keywordTag struct {
	keyword string
	tag     string
}

// Default tags returned when no keyword matches.
const (
	DefaultCategory = "その他"
	DefaultAge      = "指定なし"
)

var categoryTable = []keywordTag{
	{"離乳食", "食育・栄養"},
	{"食育", "食育・栄養"},
	{"栄養", "食育・栄養"},
	{"健康", "健康・医療"},
	{"歯", "健康・医療"},
	{"医療", "健康・医療"},
	{"発達", "発達・育児相談"},
	{"相談", "発達・育児相談"},
	{"育児", "発達・育児相談"},
	{"パパ", "父親・家族支援"},
	{"ふれあい", "親子ふれあい"},
	{"遊び", "親子ふれあい"},
	{"あそび", "親子ふれあい"},
	{"リトミック", "親子ふれあい"},
	{"マッサージ", "親子ふれあい"},
	{"絵本", "親子ふれあい"},
	{"おはなし", "親子ふれあい"},
	{"読み聞かせ", "親子ふれあい"},
	{"体操", "親子ふれあい"},
	{"ひとり親", "ひとり親支援"},
	{"産前", "産前・産後"},
	{"産後", "産前・産後"},
	{"骨盤", "産前・産後"},
	{"ヨガ", "産前・産後"},
	{"ピラティス", "産前・産後"},
	{"マタニティ", "産前・産後"},
	{"お金", "生活支援"},
	{"メイク", "生活支援"},
	{"カラー", "生活支援"},
}

var ageTable = []keywordTag{
	{"妊婦", "妊娠中"},
	{"妊娠中", "妊娠中"},
	{"マタニティ", "妊娠中"},
	{"産後", "0歳"},
	{"ベビー", "0歳"},
	{"0歳", "0歳"},
	{"０歳", "0歳"},
	{"乳児", "0歳"},
	{"1歳", "1〜2歳"},
	{"2歳", "1〜2歳"},
	{"１歳", "1〜2歳"},
	{"２歳", "1〜2歳"},
	{"3歳", "3〜5歳"},
	{"4歳", "3〜5歳"},
	{"5歳", "3〜5歳"},
	{"未就学", "3〜5歳"},
	{"幼児", "3〜5歳"},
	{"小学", "小学生以上"},
	{"乳幼児", "0歳〜未就学"},
}

func lookup(text string, table []keywordTag, fallback string) string {
	for _, entry := range table {
		if strings.Contains(text, entry.keyword) {
			return entry.tag
		}
	}
	return fallback
}

// Category returns the category tag for the first matching keyword, or
// DefaultCategory when nothing matches.
func Category(text string) string {
	return lookup(text, categoryTable, DefaultCategory)
}

// Age returns the target-age tag for the first matching keyword, or
// DefaultAge when nothing matches.
func Age(text string) string {
	return lookup(text, ageTable, DefaultAge)
}
