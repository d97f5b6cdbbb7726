// Package choice provides discriminated unions of two to six cases.
//
// Case is 1-based; the zero value of a ChoiceN has Case 0 and holds nothing.
//
//	c := choice.Case2Of3[int, string, bool]("text")
//	switch c.Case {
//	case 2:
//		fmt.Println(c.Item2)
//	}
package choice

// Choice is implemented by every ChoiceN instantiation.
type Choice interface {
	// Cases returns the number of cases.
	Cases() int
	// Selected returns the active case, 0 when empty.
	Selected() int
}

// Choice2 holds a value of exactly one of two types.
type Choice2[T1, T2 any] struct {
	Case  int
	Item1 T1
	Item2 T2
}

// Cases returns 2.
func (Choice2[T1, T2]) Cases() int {
	return 2
}

// Selected returns the active case.
func (c Choice2[T1, T2]) Selected() int {
	return c.Case
}

// Case1Of2 returns a Choice2 holding v in case 1.
func Case1Of2[T1, T2 any](v T1) Choice2[T1, T2] {
	return Choice2[T1, T2]{Case: 1, Item1: v}
}

// Case2Of2 returns a Choice2 holding v in case 2.
func Case2Of2[T1, T2 any](v T2) Choice2[T1, T2] {
	return Choice2[T1, T2]{Case: 2, Item2: v}
}

// Choice3 holds a value of exactly one of three types.
type Choice3[T1, T2, T3 any] struct {
	Case  int
	Item1 T1
	Item2 T2
	Item3 T3
}

// Cases returns 3.
func (Choice3[T1, T2, T3]) Cases() int {
	return 3
}

// Selected returns the active case.
func (c Choice3[T1, T2, T3]) Selected() int {
	return c.Case
}

// Case1Of3 returns a Choice3 holding v in case 1.
func Case1Of3[T1, T2, T3 any](v T1) Choice3[T1, T2, T3] {
	return Choice3[T1, T2, T3]{Case: 1, Item1: v}
}

// Case2Of3 returns a Choice3 holding v in case 2.
func Case2Of3[T1, T2, T3 any](v T2) Choice3[T1, T2, T3] {
	return Choice3[T1, T2, T3]{Case: 2, Item2: v}
}

// Case3Of3 returns a Choice3 holding v in case 3.
func Case3Of3[T1, T2, T3 any](v T3) Choice3[T1, T2, T3] {
	return Choice3[T1, T2, T3]{Case: 3, Item3: v}
}

// Choice4 holds a value of exactly one of four types.
type Choice4[T1, T2, T3, T4 any] struct {
	Case  int
	Item1 T1
	Item2 T2
	Item3 T3
	Item4 T4
}

// Cases returns 4.
func (Choice4[T1, T2, T3, T4]) Cases() int {
	return 4
}

// Selected returns the active case.
func (c Choice4[T1, T2, T3, T4]) Selected() int {
	return c.Case
}

// Case1Of4 returns a Choice4 holding v in case 1.
func Case1Of4[T1, T2, T3, T4 any](v T1) Choice4[T1, T2, T3, T4] {
	return Choice4[T1, T2, T3, T4]{Case: 1, Item1: v}
}

// Case2Of4 returns a Choice4 holding v in case 2.
func Case2Of4[T1, T2, T3, T4 any](v T2) Choice4[T1, T2, T3, T4] {
	return Choice4[T1, T2, T3, T4]{Case: 2, Item2: v}
}

// Case3Of4 returns a Choice4 holding v in case 3.
func Case3Of4[T1, T2, T3, T4 any](v T3) Choice4[T1, T2, T3, T4] {
	return Choice4[T1, T2, T3, T4]{Case: 3, Item3: v}
}

// Case4Of4 returns a Choice4 holding v in case 4.
func Case4Of4[T1, T2, T3, T4 any](v T4) Choice4[T1, T2, T3, T4] {
	return Choice4[T1, T2, T3, T4]{Case: 4, Item4: v}
}

// Choice5 holds a value of exactly one of five types.
type Choice5[T1, T2, T3, T4, T5 any] struct {
	Case  int
	Item1 T1
	Item2 T2
	Item3 T3
	Item4 T4
	Item5 T5
}

// Cases returns 5.
func (Choice5[T1, T2, T3, T4, T5]) Cases() int {
	return 5
}

// Selected returns the active case.
func (c Choice5[T1, T2, T3, T4, T5]) Selected() int {
	return c.Case
}

// Case1Of5 returns a Choice5 holding v in case 1.
func Case1Of5[T1, T2, T3, T4, T5 any](v T1) Choice5[T1, T2, T3, T4, T5] {
	return Choice5[T1, T2, T3, T4, T5]{Case: 1, Item1: v}
}

// Case2Of5 returns a Choice5 holding v in case 2.
func Case2Of5[T1, T2, T3, T4, T5 any](v T2) Choice5[T1, T2, T3, T4, T5] {
	return Choice5[T1, T2, T3, T4, T5]{Case: 2, Item2: v}
}

// Case3Of5 returns a Choice5 holding v in case 3.
func Case3Of5[T1, T2, T3, T4, T5 any](v T3) Choice5[T1, T2, T3, T4, T5] {
	return Choice5[T1, T2, T3, T4, T5]{Case: 3, Item3: v}
}

// Case4Of5 returns a Choice5 holding v in case 4.
func Case4Of5[T1, T2, T3, T4, T5 any](v T4) Choice5[T1, T2, T3, T4, T5] {
	return Choice5[T1, T2, T3, T4, T5]{Case: 4, Item4: v}
}

// Case5Of5 returns a Choice5 holding v in case 5.
func Case5Of5[T1, T2, T3, T4, T5 any](v T5) Choice5[T1, T2, T3, T4, T5] {
	return Choice5[T1, T2, T3, T4, T5]{Case: 5, Item5: v}
}

// Choice6 holds a value of exactly one of six types.
type Choice6[T1, T2, T3, T4, T5, T6 any] struct {
	Case  int
	Item1 T1
	Item2 T2
	Item3 T3
	Item4 T4
	Item5 T5
	Item6 T6
}

// Cases returns 6.
func (Choice6[T1, T2, T3, T4, T5, T6]) Cases() int {
	return 6
}

// Selected returns the active case.
func (c Choice6[T1, T2, T3, T4, T5, T6]) Selected() int {
	return c.Case
}

// Case1Of6 returns a Choice6 holding v in case 1.
func Case1Of6[T1, T2, T3, T4, T5, T6 any](v T1) Choice6[T1, T2, T3, T4, T5, T6] {
	return Choice6[T1, T2, T3, T4, T5, T6]{Case: 1, Item1: v}
}

// Case2Of6 returns a Choice6 holding v in case 2.
func Case2Of6[T1, T2, T3, T4, T5, T6 any](v T2) Choice6[T1, T2, T3, T4, T5, T6] {
	return Choice6[T1, T2, T3, T4, T5, T6]{Case: 2, Item2: v}
}

// Case3Of6 returns a Choice6 holding v in case 3.
func Case3Of6[T1, T2, T3, T4, T5, T6 any](v T3) Choice6[T1, T2, T3, T4, T5, T6] {
	return Choice6[T1, T2, T3, T4, T5, T6]{Case: 3, Item3: v}
}

// Case4Of6 returns a Choice6 holding v in case 4.
func Case4Of6[T1, T2, T3, T4, T5, T6 any](v T4) Choice6[T1, T2, T3, T4, T5, T6] {
	return Choice6[T1, T2, T3, T4, T5, T6]{Case: 4, Item4: v}
}

// Case5Of6 returns a Choice6 holding v in case 5.
func Case5Of6[T1, T2, T3, T4, T5, T6 any](v T5) Choice6[T1, T2, T3, T4, T5, T6] {
	return Choice6[T1, T2, T3, T4, T5, T6]{Case: 5, Item5: v}
}

// Case6Of6 returns a Choice6 holding v in case 6.
func Case6Of6[T1, T2, T3, T4, T5, T6 any](v T6) Choice6[T1, T2, T3, T4, T5, T6] {
	return Choice6[T1, T2, T3, T4, T5, T6]{Case: 6, Item6: v}
}
