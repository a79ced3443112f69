package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/reelrank/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecommendationsJSON(t *testing.T) {
	Convey("Given recommendations with no movies", t, func() {
		recs := types.Recommendations{RaterID: "7", Genre: "Drama", Movies: []types.MovieEntry{}}

		Convey("When encoding to JSON", func() {
			data, err := json.Marshal(recs)

			Convey("Then movies is an empty array, not null", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `{"rater_id":"7","genre":"Drama","movies":[]}`)
			})
		})
	})

	Convey("Given a ranked movie", t, func() {
		e := types.MovieEntry{Rank: 1, Title: "Heat", Average: 4.5, Ratings: 2}

		Convey("Then the JSON field names are snake case", func() {
			data, err := json.Marshal(e)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{"rank":1,"title":"Heat","average":4.5,"ratings":2}`)
		})
	})

	Convey("Given a ranked genre", t, func() {
		e := types.GenreEntry{Rank: 2, Genre: "Sci-Fi", Average: 3.25, Movies: 4}

		Convey("Then it encodes every field", func() {
			data, err := json.Marshal(e)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{"rank":2,"genre":"Sci-Fi","average":3.25,"movies":4}`)
		})
	})
}
