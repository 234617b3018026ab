package intcode

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseImage(t *testing.T) {
	for _, c := range []struct {
		in   string
		want []int64
		err  bool
	}{
		{in: "1,9,10,3,2,3,11,0,99,30,40,50", want: []int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}},
		{in: "3,0,4,0,99\n", want: []int64{3, 0, 4, 0, 99}},
		{in: " 104, -1 ,\t99,\n", want: []int64{104, -1, 99}},
		{in: "1125899906842624", want: []int64{1125899906842624}},
		{in: "", err: true},
		{in: "1,,2", err: true},
		{in: "1,x,2", err: true},
		{in: "1.5", err: true},
	} {
		got, err := ParseImage(c.in)
		if (err != nil) != c.err {
			t.Errorf("ParseImage(%q) error = %v, want error %v", c.in, err, c.err)
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("ParseImage(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestReadImage(t *testing.T) {
	got, err := ReadImage(strings.NewReader("109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, quine) {
		t.Errorf("ReadImage = %v, want %v", got, quine)
	}
}
