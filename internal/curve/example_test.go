package curve_test

import (
	"fmt"

	"polyfit/internal/curve"
)

func ExampleFit() {
	params, f, err := curve.Fit([]float64{0, 1, 2}, []float64{1, 4, 7}, curve.Lin)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("slope=%.3f intercept=%.3f\n", params[0].Value, params[1].Value)
	fmt.Printf("f(3)=%.3f\n", f([]float64{3})[0].Value)
	// Output:
	// slope=3.000 intercept=1.000
	// f(3)=10.000
}

func ExampleResult_Label() {
	x := []float64{-0.1, 0.5, 1.0, 1.5, 2.3, 2.9, 3.5}
	y := []float64{-0.7, 0.1, 0.3, 1.1, 1.5, 2.3, 2.2}
	res, err := curve.FitWith(x, y, curve.Lin, curve.Options{})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Label(curve.LabelOptions{}))
	// Output:
	// y = ((8.4 ± 0.8)×10^-1)x + (-4 ± 2)×10^-1
}

func ExampleBuild() {
	obj := curve.Build(curve.Mask{true, true, true})
	fmt.Println(obj.Eval(2, []float64{1, 2, 3}))
	// Output: 11
}
