package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdkit/tdselect/internal/model"
	"github.com/tdkit/tdselect/internal/parser"
)

func parseJavaCode(t *testing.T, code string) *parser.ParseResult {
	t.Helper()
	p, err := parser.NewParser()
	require.NoError(t, err)
	defer p.Close()

	result, err := p.Parse(context.Background(), []byte(code))
	require.NoError(t, err)
	t.Cleanup(result.Close)
	return result
}

func methodByName(t *testing.T, facts *FileFacts, name string) MethodFacts {
	t.Helper()
	for _, m := range facts.Methods {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("method %s not extracted", name)
	return MethodFacts{}
}

const bankSource = `package ca.example;

import java.util.List;
import java.util.ArrayList;

public class Bank {
    private final List<Account> accounts = new ArrayList<>();
    private Ledger ledger;

    public Bank(Ledger ledger) {
        this.ledger = ledger;
    }

    public void deposit(String id, double amount) {
        Account account = find(id);
        if (account == null) {
            throw new IllegalArgumentException("unknown account");
        }
        account.credit(amount);
        this.ledger.record(id, amount);
    }

    public Account find(String id) {
        for (Account a : accounts) {
            if (a.getId().equals(id)) {
                return a;
            }
        }
        return null;
    }

    public double total(int... ids) {
        double sum = 0;
        for (int i = 0; i < ids.length; i++) {
            sum += ids[i] > 0 ? 1 : 0;
        }
        return sum;
    }

    abstract static class Base {
        abstract void hook();

        void run() {
            hook();
        }
    }

    public static void main(String[] args) {
        new Bank(null).deposit("a", 1);
    }
}
`

func TestFileExtractsMethods(t *testing.T) {
	result := parseJavaCode(t, bankSource)
	facts := File(result, "src/main/java/ca/example/Bank.java")

	assert.Equal(t, "ca.example", facts.Package)
	assert.Equal(t, []string{"java.util.List", "java.util.ArrayList"}, facts.Imports)
	assert.False(t, facts.Generated)

	var names []string
	for _, m := range facts.Methods {
		names = append(names, m.ID())
	}
	assert.ElementsMatch(t, []string{
		"ca.example.Bank#deposit(String,double)",
		"ca.example.Bank#find(String)",
		"ca.example.Bank#total(int...)",
		"ca.example.Bank.Base#run()",
		"ca.example.Bank#main(String[])",
	}, names, "constructors and abstract methods are not indexed")

	require.Len(t, facts.Classes, 2)
	assert.Equal(t, "ca.example.Bank", facts.Classes[0].QualifiedName)
	assert.Equal(t, "ca.example.Bank.Base", facts.Classes[1].QualifiedName)
	assert.Equal(t, "ca.example.Bank", facts.Classes[1].Outer)
	assert.Equal(t, "List", facts.Classes[0].Fields["accounts"])
	assert.Equal(t, "Ledger", facts.Classes[0].Fields["ledger"])
}

func TestFileCounts(t *testing.T) {
	result := parseJavaCode(t, bankSource)
	facts := File(result, "Bank.java")

	deposit := methodByName(t, facts, "deposit")
	// local decl, if, throw, two expression statements
	assert.Equal(t, 5, deposit.StatementCount)
	assert.Equal(t, 1, deposit.BranchCount)
	assert.Equal(t, 0, deposit.ReturnCount)

	find := methodByName(t, facts, "find")
	// for, if, return, return
	assert.Equal(t, 4, find.StatementCount)
	assert.Equal(t, 2, find.BranchCount)
	assert.Equal(t, 1, find.LoopCount)
	assert.Equal(t, 2, find.ReturnCount)

	total := methodByName(t, facts, "total")
	// local decl, for (header decl not counted), body expression, return
	assert.Equal(t, 4, total.StatementCount)
	// for + ternary
	assert.Equal(t, 2, total.BranchCount)
	assert.True(t, (&total).Varargs())
}

func TestFileCallSites(t *testing.T) {
	result := parseJavaCode(t, bankSource)
	facts := File(result, "Bank.java")

	deposit := methodByName(t, facts, "deposit")
	require.Len(t, deposit.Calls, 3)

	assert.Equal(t, CallSite{Name: "find", Args: 1, Kind: ReceiverNone, Line: 15}, deposit.Calls[0])

	credit := deposit.Calls[1]
	assert.Equal(t, "credit", credit.Name)
	assert.Equal(t, ReceiverIdentifier, credit.Kind)
	assert.Equal(t, "account", credit.Receiver)
	assert.Equal(t, "Account", credit.ReceiverType)

	record := deposit.Calls[2]
	assert.Equal(t, "record", record.Name)
	assert.Equal(t, 2, record.Args)
	assert.Equal(t, "ledger", record.Receiver)
	assert.Equal(t, "Ledger", record.ReceiverType)

	find := methodByName(t, facts, "find")
	require.Len(t, find.Calls, 2)
	// the outer call is visited before its receiver
	assert.Equal(t, "equals", find.Calls[0].Name)
	assert.Equal(t, ReceiverOther, find.Calls[0].Kind)
	assert.Equal(t, "getId", find.Calls[1].Name)
	assert.Equal(t, "Account", find.Calls[1].ReceiverType)

	run := methodByName(t, facts, "run")
	require.Len(t, run.Calls, 1)
	assert.Equal(t, "hook", run.Calls[0].Name)

	main := methodByName(t, facts, "main")
	require.Len(t, main.Calls, 1)
	assert.Equal(t, "Bank", main.Calls[0].ReceiverType)
}

func TestFileModifiers(t *testing.T) {
	code := `package p;

@Generated("tool")
class Gen {
    int a() { return 1; }
}

interface Shape {
    double area();

    default String describe() {
        return "area " + area();
    }

    static Shape unit() {
        return () -> 1.0;
    }
}

class Plain {
    @Override
    public synchronized String toString() { return "x"; }

    private static final int helper(int x) { return x; }

    protected void go() { }
}
`
	facts := File(parseJavaCode(t, code), "p/Gen.java")

	a := methodByName(t, facts, "a")
	assert.True(t, a.Modifiers.Generated)
	assert.Equal(t, model.VisibilityPackage, a.Modifiers.Visibility)

	describe := methodByName(t, facts, "describe")
	assert.True(t, describe.Modifiers.Default)
	assert.Equal(t, model.VisibilityPublic, describe.Modifiers.Visibility)
	require.Len(t, describe.Calls, 1)
	assert.Equal(t, "area", describe.Calls[0].Name)

	unit := methodByName(t, facts, "unit")
	assert.True(t, unit.Modifiers.Static)

	toString := methodByName(t, facts, "toString")
	assert.True(t, toString.Modifiers.Synchronized)
	assert.Equal(t, []string{"Override"}, toString.Modifiers.Annotations)
	assert.False(t, toString.Modifiers.Generated)

	helper := methodByName(t, facts, "helper")
	assert.Equal(t, model.VisibilityPrivate, helper.Modifiers.Visibility)
	assert.True(t, helper.Modifiers.Static)
	assert.True(t, helper.Modifiers.Final)

	goMethod := methodByName(t, facts, "go")
	assert.Equal(t, model.VisibilityProtected, goMethod.Modifiers.Visibility)
	assert.Equal(t, 0, goMethod.StatementCount)

	for _, m := range facts.Methods {
		assert.NotEqual(t, "area", m.Name, "interface signature without body")
	}
}

func TestGeneratedHeader(t *testing.T) {
	code := `// Code generated by protoc. DO NOT EDIT.
package p;

class Msg {
    int size() { return 0; }
}
`
	facts := File(parseJavaCode(t, code), "p/Msg.java")
	assert.True(t, facts.Generated)
	assert.True(t, methodByName(t, facts, "size").Modifiers.Generated)
}

func TestSwitchCounting(t *testing.T) {
	code := `class S {
    int classify(int n) {
        switch (n) {
            case 0:
            case 1:
                return 0;
            case 2:
                n++;
                break;
            default:
                return -1;
        }
        int k = switch (n) {
            case 3 -> 1;
            default -> 2;
        };
        return k;
    }
}
`
	facts := File(parseJavaCode(t, code), "S.java")
	m := methodByName(t, facts, "classify")
	// "case 0:" falls through into "case 1:": two groups, default, two rules
	assert.Equal(t, 5, m.BranchCount)
	// switch, return, n++, break, return, int k, two rule bodies, return k
	assert.Equal(t, 9, m.StatementCount)
	assert.Equal(t, 3, m.ReturnCount)
}

func TestSwitchFallThroughLabels(t *testing.T) {
	code := `class F {
    int pick(int n) {
        switch (n) {
            case 0:
            case 1: return 0;
            case 2: n++; break;
            default: return -1;
        }
        return n;
    }
    int labelled(int n) {
        switch (n) {
            case 0:
                // shares the next body
            case 1:
                return 1;
        }
        return 0;
    }
}
`
	facts := File(parseJavaCode(t, code), "F.java")
	assert.Equal(t, 3, methodByName(t, facts, "pick").BranchCount)
	assert.Equal(t, 1, methodByName(t, facts, "labelled").BranchCount)
}

func TestTryCatchCounting(t *testing.T) {
	code := `class T {
    void load(String path) {
        try {
            read(path);
        } catch (IllegalStateException e) {
            log(e);
        } catch (RuntimeException e) {
            throw e;
        }
    }
    void read(String p) { }
    void log(Exception e) { }
}
`
	facts := File(parseJavaCode(t, code), "T.java")
	m := methodByName(t, facts, "load")
	assert.Equal(t, 2, m.CatchCount)
	assert.Equal(t, 2, m.BranchCount)
	// try, read, log, throw
	assert.Equal(t, 4, m.StatementCount)
}

func TestMethodReferences(t *testing.T) {
	code := `package p;

import java.util.List;

class R {
    private Formatter fmt;

    void all(List<String> xs) {
        xs.forEach(this::print);
        xs.stream().map(Util::clean).forEach(fmt::apply);
        xs.stream().map(Item::new);
    }

    void print(String s) { }
}
`
	facts := File(parseJavaCode(t, code), "p/R.java")
	all := methodByName(t, facts, "all")

	var refs []CallSite
	for _, c := range all.Calls {
		if c.Reference {
			refs = append(refs, c)
		}
	}
	require.Len(t, refs, 3)
	assert.Equal(t, CallSite{Name: "print", Args: AnyArity, Kind: ReceiverThis, Line: 9, Reference: true}, refs[0])
	assert.Equal(t, "clean", refs[1].Name)
	assert.Equal(t, "Util", refs[1].Receiver)
	assert.Equal(t, "apply", refs[2].Name)
	assert.Equal(t, "Formatter", refs[2].ReceiverType)
}

func TestEntryPointAndAccessor(t *testing.T) {
	tests := []struct {
		name     string
		facts    MethodFacts
		entry    bool
		accessor bool
	}{
		{
			name: "main",
			facts: MethodFacts{Name: "main", ReturnType: "void", Modifiers: model.Modifiers{Static: true},
				Params: []Param{{Name: "args", Type: "String[]"}}},
			entry: true,
		},
		{
			name: "main varargs",
			facts: MethodFacts{Name: "main", ReturnType: "void", Modifiers: model.Modifiers{Static: true},
				Params: []Param{{Name: "args", Type: "String..."}}},
			entry: true,
		},
		{
			name:  "instance main",
			facts: MethodFacts{Name: "main", ReturnType: "void", Params: []Param{{Type: "String[]"}}},
		},
		{
			name:     "getter",
			facts:    MethodFacts{Name: "getBalance", StatementCount: 1},
			accessor: true,
		},
		{
			name:     "predicate",
			facts:    MethodFacts{Name: "isEmpty", StatementCount: 1},
			accessor: true,
		},
		{
			name:     "getter with logic",
			facts:    MethodFacts{Name: "getTotal", StatementCount: 4, BranchCount: 1},
			accessor: true,
		},
		{
			name:  "bare prefix",
			facts: MethodFacts{Name: "is", StatementCount: 1},
		},
		{
			name:  "lowercase after prefix",
			facts: MethodFacts{Name: "settle", StatementCount: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.entry, tt.facts.IsEntryPoint())
			assert.Equal(t, tt.accessor, tt.facts.IsAccessor())
		})
	}
}

func TestAcceptsArgs(t *testing.T) {
	fixed := MethodFacts{Params: []Param{{Type: "int"}, {Type: "int"}}}
	assert.True(t, fixed.AcceptsArgs(2))
	assert.False(t, fixed.AcceptsArgs(1))
	assert.True(t, fixed.AcceptsArgs(AnyArity))

	varargs := MethodFacts{Params: []Param{{Type: "String"}, {Type: "Object..."}}}
	assert.True(t, varargs.AcceptsArgs(1))
	assert.True(t, varargs.AcceptsArgs(4))
	assert.False(t, varargs.AcceptsArgs(0))
}

func TestInfo(t *testing.T) {
	facts := File(parseJavaCode(t, bankSource), "src/main/java/ca/example/Bank.java")
	find := methodByName(t, facts, "find")
	info := find.Info(facts.Path)

	assert.Equal(t, "ca.example.Bank#find(String)", info.ID)
	assert.Equal(t, "find(String)", info.Signature)
	assert.Equal(t, "ca.example.Bank", info.ClassName)
	assert.Equal(t, "src/main/java/ca/example/Bank.java", info.File)
	assert.Equal(t, 4, info.StatementCount)
	assert.Equal(t, 23, info.StartLine)
	assert.False(t, info.IsAccessor)
	assert.Empty(t, info.Calls, "call edges are resolved by the scanner")
}
