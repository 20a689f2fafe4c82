// Package classfile reads JVM class files into the structural model and
// writes the model back, recomputing max_stack, max_locals and the
// StackMapTable from the final instruction sequence.
package classfile

const magic = 0xCAFEBABE

type constantTag uint8

const (
	tagUtf8               constantTag = 1
	tagInteger            constantTag = 3
	tagFloat              constantTag = 4
	tagLong               constantTag = 5
	tagDouble             constantTag = 6
	tagClass              constantTag = 7
	tagString             constantTag = 8
	tagFieldref           constantTag = 9
	tagMethodref          constantTag = 10
	tagInterfaceMethodref constantTag = 11
	tagNameAndType        constantTag = 12
	tagMethodHandle       constantTag = 15
	tagMethodType         constantTag = 16
	tagDynamic            constantTag = 17
	tagInvokeDynamic      constantTag = 18
	tagModule             constantTag = 19
	tagPackage            constantTag = 20
)

// Attribute names handled by the reader and writer.
const (
	attrCode                     = "Code"
	attrConstantValue            = "ConstantValue"
	attrExceptions               = "Exceptions"
	attrSignature                = "Signature"
	attrSourceFile               = "SourceFile"
	attrInnerClasses             = "InnerClasses"
	attrEnclosingMethod          = "EnclosingMethod"
	attrNestHost                 = "NestHost"
	attrNestMembers              = "NestMembers"
	attrPermittedSubclasses      = "PermittedSubclasses"
	attrBootstrapMethods         = "BootstrapMethods"
	attrLineNumberTable          = "LineNumberTable"
	attrStackMapTable            = "StackMapTable"
	attrRuntimeVisibleAnns       = "RuntimeVisibleAnnotations"
	attrRuntimeInvisibleAnns     = "RuntimeInvisibleAnnotations"
	attrLocalVariableTable       = "LocalVariableTable"
	attrLocalVariableTypeTable   = "LocalVariableTypeTable"
	stackMapMinMajorVersion      = 50
	maxCodeLength                = 65535
	maxPoolEntries               = 65535
)

// Verification type tags used in StackMapTable entries.
const (
	itemTop               = 0
	itemInteger           = 1
	itemFloat             = 2
	itemDouble            = 3
	itemLong              = 4
	itemNull              = 5
	itemUninitializedThis = 6
	itemObject            = 7
	itemUninitialized     = 8
)

// newarray atype operands.
var newArrayTypes = map[int32]string{
	4:  "[Z",
	5:  "[C",
	6:  "[F",
	7:  "[D",
	8:  "[B",
	9:  "[S",
	10: "[I",
	11: "[J",
}
