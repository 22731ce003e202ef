package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Nhà Giả Kim", "nha-gia-kim"},
		{"Đắc Nhân Tâm", "dac-nhan-tam"},
		{"Mắt Biếc", "mat-biec"},
		{"Tuổi Trẻ Đáng Giá Bao Nhiêu?", "tuoi-tre-dang-gia-bao-nhieu"},
		{"Số Đỏ", "so-do"},
		{"  Hello   World!  ", "hello-world"},
		{"100 Năm Cô Đơn", "100-nam-co-don"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.title))
		})
	}
}
