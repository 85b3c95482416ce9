package reader_test

import (
	"bytes"
	"fmt"

	"github.com/ssargent/actfast/pkg/actigraph"
	"github.com/ssargent/actfast/pkg/reader"
	"github.com/ssargent/actfast/pkg/sensors"
)

func ExampleDecodeBytes() {
	var buf bytes.Buffer
	if err := actigraph.Synthesize(&buf, actigraph.SynthOptions{
		Start: 1700000000, SampleRate: 30, Seconds: 2,
	}); err != nil {
		fmt.Println(err)
		return
	}

	res, err := reader.DecodeBytes(buf.Bytes(), reader.Options{})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Format)
	fmt.Println(res.TableNames())
	fmt.Println(res.Tables[sensors.TableActivity].Len())
	// Output:
	// Actigraph GT3X
	// [Activity]
	// 60
}
