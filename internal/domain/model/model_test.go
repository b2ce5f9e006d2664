package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/courtquote/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestNumber(t *testing.T) {
	convey.Convey("Given lenient numeric input", t, func() {
		cases := map[string]float64{
			`12.5`:   12.5,
			`"40"`:   40,
			`" 7 "`:  7,
			`""`:     0,
			`"abc"`:  0,
			`null`:   0,
			`true`:   1,
			`false`:  0,
			`-3`:     -3,
			`"1e3"`:  1000,
			`"NaN"`:  0,
			`"-Inf"`: 0,
		}
		for in, want := range cases {
			var n model.Number
			err := json.Unmarshal([]byte(in), &n)
			convey.So(err, convey.ShouldBeNil)
			convey.So(n.Float(), convey.ShouldEqual, want)
		}

		convey.Convey("When the value is an object", func() {
			var n model.Number
			err := json.Unmarshal([]byte(`{"a":1}`), &n)

			convey.Convey("Then decoding should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestFlag(t *testing.T) {
	convey.Convey("Given lenient boolean input", t, func() {
		cases := map[string]bool{
			`true`:    true,
			`false`:   false,
			`null`:    false,
			`"true"`:  true,
			`"false"`: false,
			`"yes"`:   true,
			`""`:      false,
			`1`:       true,
			`0`:       false,
		}
		for in, want := range cases {
			var f model.Flag
			convey.So(json.Unmarshal([]byte(in), &f), convey.ShouldBeNil)
			convey.So(bool(f), convey.ShouldEqual, want)
		}
	})
}

func TestText(t *testing.T) {
	convey.Convey("Given a phone number sent as a JSON number", t, func() {
		var info model.RawClientInfo
		err := json.Unmarshal([]byte(`{"name":" Asha ","phone":9876543210,"email":null}`), &info)

		convey.Convey("Then it should be kept as text", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(info.Phone), convey.ShouldEqual, "9876543210")
			convey.So(info.Name.Trimmed(), convey.ShouldEqual, "Asha")
			convey.So(string(info.Email), convey.ShouldEqual, "")
		})
	})
}

func TestBreakdownJSON(t *testing.T) {
	convey.Convey("Given a breakdown with a shed cost", t, func() {
		b := model.Breakdown{BaseCost: 100, ShedCost: 50, TotalCost: 150}

		convey.Convey("When encoding it", func() {
			data, err := json.Marshal(b)
			convey.So(err, convey.ShouldBeNil)
			var out map[string]float64
			convey.So(json.Unmarshal(data, &out), convey.ShouldBeNil)

			convey.Convey("Then roofCost should mirror shedCost", func() {
				convey.So(out["shedCost"], convey.ShouldEqual, 50)
				convey.So(out["roofCost"], convey.ShouldEqual, 50)
				convey.So(out["totalCost"], convey.ShouldEqual, 150)
			})
		})

		convey.Convey("When decoding a record that only has roofCost", func() {
			var got model.Breakdown
			err := json.Unmarshal([]byte(`{"baseCost":10,"roofCost":7,"totalCost":17}`), &got)

			convey.Convey("Then shedCost should be filled from it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.ShedCost, convey.ShouldEqual, 7)
				convey.So(got.BaseCost, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("Then the line sum should match the total", func() {
			convey.So(b.LineSum(), convey.ShouldEqual, b.TotalCost)
		})
	})
}
