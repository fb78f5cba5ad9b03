// Package mockwire fills test fixtures with mocks, spies and captors and
// injects them into the object under test.
//
// Fields are marked with a struct tag:
//
//	type serviceTest struct {
//		repo    *mocks.MockRepo              `mockwire:"mock"`
//		clock   Clock                        `mockwire:"mock -name=clock"`
//		events  *mockwire.Captor[Event]      `mockwire:"captor"`
//		service *Service                     `mockwire:"inject"`
//	}
//
//	func TestService(t *testing.T) {
//		var fx serviceTest
//		mockwire.MustInit(t, &fx)
//		...
//	}
//
// Mocks and spies are candidates for injection; captors are not. Each inject
// field is resolved in declaration order: a registered constructor is tried
// first (see RegisterConstructor), then Set<Field> methods, then direct
// writes into the target's unset fields, exported or not. A field with no
// matching candidate is left alone. Two candidates of the same type are told
// apart by name (the -name parameter, or the fixture field name); when that
// fails the pass returns an *AmbiguityError.
//
// Interface-typed mocks need a factory, either a plain one registered with
// RegisterMockFactory or a generated gomock constructor registered with
// RegisterGomockFactory. Spies need a wrapper registered with
// RegisterSpyFactory.
package mockwire
